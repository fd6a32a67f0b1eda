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

// Package repo holds the membership repository and the generic catalog
// collection repository on top of the flat-file store.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/store"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
)

// IMemberRepository is the membership domain contract.
type IMemberRepository interface {
	// List returns flat membership rows joined with their identity records.
	// Memberships whose user record is gone get a synthesized placeholder.
	List(ctx context.Context) ([]model.MemberEntry, error)

	// ListNested composes the user-with-companies wire shape.
	ListNested(ctx context.Context) ([]model.UserMemberships, error)

	// Upsert merges the request's companies into the user's memberships and
	// returns the user's resulting nested record. A request without a
	// user_id allocates the next one.
	Upsert(ctx context.Context, req *model.MemberUpsertReq) (*model.UserMemberships, error)

	// Transition applies an approve or reject action to one membership.
	Transition(ctx context.Context, req *model.MemberActionReq) (*model.Membership, error)

	// Delete removes one membership by branch, or every membership of the
	// user when no branch is given.
	Delete(ctx context.Context, req *model.MemberDeleteReq) error
}

type MemberRepo struct {
	store store.IStore
}

func NewMemberRepo(st store.IStore) *MemberRepo {
	return &MemberRepo{store: st}
}

func (mr *MemberRepo) readRows(ctx context.Context) ([]model.Membership, error) {
	var rows []model.Membership
	if err := mr.store.Read(ctx, model.CollectionMembers, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (mr *MemberRepo) readUsers(ctx context.Context) (map[int64]model.User, error) {
	var users []model.User
	if err := mr.store.Read(ctx, model.CollectionUsers, &users); err != nil {
		return nil, err
	}
	byID := make(map[int64]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (mr *MemberRepo) List(ctx context.Context) ([]model.MemberEntry, error) {
	rows, err := mr.readRows(ctx)
	if err != nil {
		return nil, err
	}
	users, err := mr.readUsers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.MemberEntry, 0, len(rows))
	for _, row := range rows {
		user, ok := users[row.UserID]
		if !ok {
			user = model.PlaceholderUser(row.UserID, row.UserName)
		}
		entries = append(entries, model.MemberEntry{User: user, Membership: row})
	}
	return entries, nil
}

func (mr *MemberRepo) ListNested(ctx context.Context) ([]model.UserMemberships, error) {
	rows, err := mr.readRows(ctx)
	if err != nil {
		return nil, err
	}
	users, err := mr.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	return nestRows(rows, users), nil
}

// nestRows groups flat rows per user in first-seen order. Display name
// preference: identity record, then the denormalized row name, then the
// numeric fallback.
func nestRows(rows []model.Membership, users map[int64]model.User) []model.UserMemberships {
	order := make([]int64, 0)
	grouped := make(map[int64]*model.UserMemberships)

	for _, row := range rows {
		entry, ok := grouped[row.UserID]
		if !ok {
			name := row.UserName
			if u, found := users[row.UserID]; found && u.Name != "" {
				name = u.Name
			}
			if name == "" {
				name = model.DefaultUserName(row.UserID)
			}
			entry = &model.UserMemberships{
				UserID:    row.UserID,
				UserName:  name,
				Companies: make([]model.Company, 0, 1),
			}
			grouped[row.UserID] = entry
			order = append(order, row.UserID)
		}
		if row.IsPhoneVerifiedOTP {
			entry.IsPhoneVerifiedOTP = true
		}
		entry.Companies = append(entry.Companies, row.Company)
	}

	nested := make([]model.UserMemberships, 0, len(order))
	for _, id := range order {
		nested = append(nested, *grouped[id])
	}
	return nested
}

func (mr *MemberRepo) Upsert(ctx context.Context, req *model.MemberUpsertReq) (*model.UserMemberships, error) {
	companies := req.AllCompanies()

	var result *model.UserMemberships
	err := mr.store.Update(ctx, model.CollectionMembers, func(ctx context.Context) error {
		rows, err := mr.readRows(ctx)
		if err != nil {
			return err
		}

		var userID int64
		if req.UserID != nil {
			userID = *req.UserID
		} else {
			userID, err = mr.store.NextID(ctx, model.CollectionMembers, "user_id")
			if err != nil {
				return err
			}
		}

		existing := userRowIdx(rows, userID)
		if len(companies) == 0 && len(existing) == 0 {
			return &ValidationError{Field: "companies", Reason: "at least one company is required"}
		}

		now := time.Now()
		for _, in := range companies {
			if i := matchRow(rows, existing, in); i >= 0 {
				rows[i].MergeFrom(in)
				rows[i].Normalize(now)
				continue
			}
			row := model.Membership{UserID: userID, Company: in}
			row.Normalize(now)
			rows = append(rows, row)
			existing = append(existing, len(rows)-1)
		}

		// keep the per-user denormalized fields consistent across rows
		for _, i := range existing {
			if req.UserName != "" {
				rows[i].UserName = req.UserName
			}
			if req.IsPhoneVerifiedOTP != nil {
				rows[i].IsPhoneVerifiedOTP = *req.IsPhoneVerifiedOTP
			}
		}

		if err := mr.store.Write(ctx, model.CollectionMembers, rows); err != nil {
			return err
		}

		users, err := mr.readUsers(ctx)
		if err != nil {
			return err
		}
		userRows := make([]model.Membership, 0, len(existing))
		for _, i := range existing {
			userRows = append(userRows, rows[i])
		}
		nested := nestRows(userRows, users)
		if len(nested) > 0 {
			result = &nested[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// matchRow finds the row of candidate indices the incoming company merges
// into. Branch id wins, company name is the fallback, no match means append.
func matchRow(rows []model.Membership, candidates []int, in model.Company) int {
	if in.BranchID != nil {
		for _, i := range candidates {
			if rows[i].SameBranch(*in.BranchID) {
				return i
			}
		}
	}
	if in.CompanyName != nil {
		for _, i := range candidates {
			if rows[i].SameCompany(*in.CompanyName) {
				return i
			}
		}
	}
	return -1
}

func userRowIdx(rows []model.Membership, userID int64) []int {
	idx := make([]int, 0, 2)
	for i := range rows {
		if rows[i].UserID == userID {
			idx = append(idx, i)
		}
	}
	return idx
}

func (mr *MemberRepo) Transition(ctx context.Context, req *model.MemberActionReq) (*model.Membership, error) {
	target, ok := model.StatusForAction(req.Action)
	if !ok {
		return nil, &ValidationError{Field: "action", Reason: "must be approve or reject"}
	}
	if req.UserID == 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if target == model.MemberStatusRejected &&
		(req.RejectReason == nil || strings.TrimSpace(*req.RejectReason) == "") {
		return nil, &ValidationError{Field: "reject_reason", Reason: "is required when rejecting"}
	}

	var result *model.Membership
	err := mr.store.Update(ctx, model.CollectionMembers, func(ctx context.Context) error {
		rows, err := mr.readRows(ctx)
		if err != nil {
			return err
		}

		i, err := selectRow(rows, req.UserID, req.BranchID, req.CompanyName)
		if err != nil {
			return err
		}

		from := rows[i].MemberStatus
		if from == "" {
			from = model.MemberStatusPending
		}

		now := time.Now()
		if from != target {
			if err := model.NewStatusMachine().Transition(from, target); err != nil {
				return &ValidationError{Field: "action", Reason: err.Error()}
			}
		}

		rows[i].MemberStatus = target
		rows[i].ApprovedRejectedDate = &now
		adminID := req.AdminID
		rows[i].ApprovedRejectedByAdminID = &adminID
		switch target {
		case model.MemberStatusApproved:
			if rows[i].MemberSince == nil {
				since := now
				rows[i].MemberSince = &since
			}
			rows[i].RejectReason = nil
		case model.MemberStatusRejected:
			rows[i].RejectReason = req.RejectReason
		}

		if err := mr.store.Write(ctx, model.CollectionMembers, rows); err != nil {
			return err
		}

		log.Infow("membership transition",
			"user_id", req.UserID, "from", from, "to", target, "admin_id", req.AdminID)

		row := rows[i]
		result = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// selectRow resolves the membership an action targets: branch id first,
// company name next, then the user's sole membership. A multi-membership
// user with neither discriminator is a validation failure, not a guess.
func selectRow(rows []model.Membership, userID int64, branchID *int64, companyName *string) (int, error) {
	candidates := userRowIdx(rows, userID)
	if len(candidates) == 0 {
		return -1, ErrMembershipNotFound
	}

	if branchID != nil {
		for _, i := range candidates {
			if rows[i].SameBranch(*branchID) {
				return i, nil
			}
		}
		return -1, ErrMembershipNotFound
	}
	if companyName != nil {
		for _, i := range candidates {
			if rows[i].SameCompany(*companyName) {
				return i, nil
			}
		}
		return -1, ErrMembershipNotFound
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	return -1, &ValidationError{
		Field:  "branch_id",
		Reason: "is required when the user has multiple memberships",
	}
}

func (mr *MemberRepo) Delete(ctx context.Context, req *model.MemberDeleteReq) error {
	if req.UserID == 0 {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}

	return mr.store.Update(ctx, model.CollectionMembers, func(ctx context.Context) error {
		rows, err := mr.readRows(ctx)
		if err != nil {
			return err
		}

		kept := make([]model.Membership, 0, len(rows))
		removed := 0
		for _, row := range rows {
			if row.UserID == req.UserID &&
				(req.BranchID == nil || row.SameBranch(*req.BranchID)) {
				removed++
				continue
			}
			kept = append(kept, row)
		}
		if removed == 0 {
			return ErrMembershipNotFound
		}

		return mr.store.Write(ctx, model.CollectionMembers, kept)
	})
}
