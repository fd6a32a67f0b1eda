package model

import (
	"strconv"
	"time"
)

// User roles. Membership entries only ever reference Customer users; the
// rest exist for the admin console's own user management.
const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
	RoleOwner    = "Owner"
)

// User is the identity record. Referenced, never owned, by membership
// entries via user_id.
type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Role       string     `json:"role,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	ProfilePic *string    `json:"profilePic,omitempty"`
	Cabang     string     `json:"cabang,omitempty"` // home branch label
	Address    string     `json:"address,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// PlaceholderUser synthesizes an identity for a membership whose user record
// no longer exists. Membership data must never silently disappear because
// the identity record is missing.
func PlaceholderUser(userID int64, userName string) User {
	name := userName
	if name == "" {
		name = DefaultUserName(userID)
	}
	return User{
		ID:   userID,
		Name: name,
		Role: RoleCustomer,
	}
}

// DefaultUserName is the fallback display name for an unknown user id.
func DefaultUserName(userID int64) string {
	return "User " + strconv.FormatInt(userID, 10)
}
