package repo

import (
	"errors"
	"fmt"
)

// Sentinel lookup errors. The HTTP boundary maps them onto 404 codes.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrRecordNotFound     = errors.New("record not found")
	ErrUnknownCollection  = errors.New("unknown collection")
)

// ValidationError rejects a request before any store mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
