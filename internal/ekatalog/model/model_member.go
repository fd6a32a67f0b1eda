// Copyright 2025 Ekatalog Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"time"

	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/statemachine"
)

// MemberStatus is the approval lifecycle state of one company membership.
type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusApproved MemberStatus = "approved"
	MemberStatusRejected MemberStatus = "rejected"
)

// MemberTierUnset is the sentinel tier for memberships that have not been
// assigned one yet.
const MemberTierUnset = "N/A"

// Membership actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Company carries the per-company fields of a membership. It is the shape
// nested under a user record on the wire.
type Company struct {
	CompanyName               *string      `json:"company_name"`
	CompanyAddress            *string      `json:"company_address"`
	MemberTier                string       `json:"member_tier"`
	LoyaltyPoints             *int64       `json:"loyalty_points"`
	BranchID                  *int64       `json:"branch_id"`
	BranchName                *string      `json:"branch_name"`
	MemberStatus              MemberStatus `json:"member_status"`
	MemberSince               *time.Time   `json:"member_since"`
	LastActivityDate          *time.Time   `json:"last_activity_date"`
	ApplicationDate           *time.Time   `json:"application_date"`
	ApprovedRejectedDate      *time.Time   `json:"approved_rejected_date"`
	ApprovedRejectedByAdminID *int64       `json:"approved_rejected_by_admin_id"`
	RejectReason              *string      `json:"reject_reason"`
}

// Membership is the flat storage row: one company affiliation of one user.
// Exactly one row exists per (user_id, branch_id, company_name). user_name
// is denormalized for display when the identity record is gone.
type Membership struct {
	UserID             int64  `json:"user_id"`
	UserName           string `json:"user_name,omitempty"`
	IsPhoneVerifiedOTP bool   `json:"is_phone_verified_otp,omitempty"`
	Company
}

// UserMemberships is the nested wire shape composed at the serialization
// boundary only; storage and domain logic stay flat.
type UserMemberships struct {
	UserID             int64     `json:"user_id"`
	UserName           string    `json:"user_name"`
	IsPhoneVerifiedOTP bool      `json:"is_phone_verified_otp"`
	Companies          []Company `json:"companies"`
}

// Flatten expands the nested wire shape back into storage rows.
func (u *UserMemberships) Flatten() []Membership {
	rows := make([]Membership, 0, len(u.Companies))
	for _, company := range u.Companies {
		rows = append(rows, Membership{
			UserID:             u.UserID,
			UserName:           u.UserName,
			IsPhoneVerifiedOTP: u.IsPhoneVerifiedOTP,
			Company:            company,
		})
	}
	return rows
}

// MemberEntry pairs a flat membership with its (possibly synthesized)
// identity record for list views.
type MemberEntry struct {
	User       User       `json:"user"`
	Membership Membership `json:"membership"`
}

// NewStatusMachine builds the membership approval state machine:
// pending is the sole initial state, approved and rejected are
// terminal-but-revisitable, and nothing transitions back to pending.
func NewStatusMachine() *statemachine.StateMachine[MemberStatus] {
	return statemachine.New[MemberStatus]().
		Allow(MemberStatusPending, MemberStatusApproved, MemberStatusRejected).
		Allow(MemberStatusApproved, MemberStatusRejected).
		Allow(MemberStatusRejected, MemberStatusApproved)
}

// StatusForAction maps an action name to its target status.
func StatusForAction(action string) (MemberStatus, bool) {
	switch action {
	case ActionApprove:
		return MemberStatusApproved, true
	case ActionReject:
		return MemberStatusRejected, true
	default:
		return "", false
	}
}

// SameBranch reports whether the membership belongs to the given branch id.
func (m *Company) SameBranch(branchID int64) bool {
	return m.BranchID != nil && *m.BranchID == branchID
}

// SameCompany reports whether the membership carries the given company name.
func (m *Company) SameCompany(name string) bool {
	return m.CompanyName != nil && *m.CompanyName == name
}

// MergeFrom overwrites the membership's fields with the set fields of in,
// preserving anything in leaves unset. Lifecycle stamps are merged too so
// imports can round-trip full rows.
func (m *Company) MergeFrom(in Company) {
	if in.CompanyName != nil {
		m.CompanyName = in.CompanyName
	}
	if in.CompanyAddress != nil {
		m.CompanyAddress = in.CompanyAddress
	}
	if in.MemberTier != "" {
		m.MemberTier = in.MemberTier
	}
	if in.LoyaltyPoints != nil {
		m.LoyaltyPoints = in.LoyaltyPoints
	}
	if in.BranchID != nil {
		m.BranchID = in.BranchID
	}
	if in.BranchName != nil {
		m.BranchName = in.BranchName
	}
	if in.MemberStatus != "" {
		m.MemberStatus = in.MemberStatus
	}
	if in.MemberSince != nil {
		m.MemberSince = in.MemberSince
	}
	if in.LastActivityDate != nil {
		m.LastActivityDate = in.LastActivityDate
	}
	if in.ApplicationDate != nil {
		m.ApplicationDate = in.ApplicationDate
	}
	if in.ApprovedRejectedDate != nil {
		m.ApprovedRejectedDate = in.ApprovedRejectedDate
	}
	if in.ApprovedRejectedByAdminID != nil {
		m.ApprovedRejectedByAdminID = in.ApprovedRejectedByAdminID
	}
	if in.RejectReason != nil {
		m.RejectReason = in.RejectReason
	}
}

// Normalize fills creation defaults: pending status, unset tier sentinel
// and the application timestamp.
func (m *Company) Normalize(now time.Time) {
	if m.MemberTier == "" {
		m.MemberTier = MemberTierUnset
	}
	if m.MemberStatus == "" {
		m.MemberStatus = MemberStatusPending
	}
	if m.ApplicationDate == nil {
		t := now
		m.ApplicationDate = &t
	}
}

// MemberActionReq is the approve/reject request body.
type MemberActionReq struct {
	Action       string  `json:"action"`
	UserID       int64   `json:"user_id"`
	BranchID     *int64  `json:"branch_id"`
	CompanyName  *string `json:"company_name"`
	AdminID      int64   `json:"admin_id"`
	RejectReason *string `json:"reject_reason"`
}

// MemberUpsertReq is the create/merge request body. A single company may be
// given nested under "company", as a "companies" array, or through the
// embedded top-level company fields.
type MemberUpsertReq struct {
	UserID             *int64    `json:"user_id"`
	UserName           string    `json:"user_name"`
	IsPhoneVerifiedOTP *bool     `json:"is_phone_verified_otp"`
	Companies          []Company `json:"companies"`
	SingleCompany      *Company  `json:"company"`
	Company
}

// AllCompanies collects every company record carried by the request,
// regardless of which of the three body shapes was used.
func (r *MemberUpsertReq) AllCompanies() []Company {
	companies := make([]Company, 0, len(r.Companies)+1)
	companies = append(companies, r.Companies...)
	if r.SingleCompany != nil {
		companies = append(companies, *r.SingleCompany)
	}
	if len(companies) == 0 && !r.Company.isZero() {
		companies = append(companies, r.Company)
	}
	return companies
}

func (m *Company) isZero() bool {
	return m.CompanyName == nil && m.CompanyAddress == nil && m.MemberTier == "" &&
		m.LoyaltyPoints == nil && m.BranchID == nil && m.BranchName == nil &&
		m.MemberStatus == "" && m.ApplicationDate == nil
}

// MemberDeleteReq is the delete request body. A nil BranchID removes every
// membership of the user.
type MemberDeleteReq struct {
	UserID   int64  `json:"user_id"`
	BranchID *int64 `json:"branch_id"`
}
