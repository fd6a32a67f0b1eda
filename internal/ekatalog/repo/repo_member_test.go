package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/store"
)

func ptr[T any](v T) *T { return &v }

func newMemberRepo(t *testing.T) (*MemberRepo, store.IStore) {
	t.Helper()
	st := store.NewFileStore(t.TempDir())
	return NewMemberRepo(st), st
}

func seedUser(t *testing.T, st store.IStore, users ...model.User) {
	t.Helper()
	require.NoError(t, st.Write(context.Background(), model.CollectionUsers, users))
}

func TestUpsertCreatesPendingMembership(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	nested, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:   ptr(int64(10)),
		UserName: "Budi",
		Companies: []model.Company{{
			CompanyName: ptr("PT Maju"),
			BranchID:    ptr(int64(1)),
		}},
	})
	require.NoError(t, err)
	require.Len(t, nested.Companies, 1)

	c := nested.Companies[0]
	assert.Equal(t, model.MemberStatusPending, c.MemberStatus)
	assert.Equal(t, model.MemberTierUnset, c.MemberTier)
	require.NotNil(t, c.ApplicationDate)
	assert.WithinDuration(t, time.Now(), *c.ApplicationDate, time.Minute)
	assert.Nil(t, c.MemberSince)
}

func TestUpsertAllocatesUserID(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	first, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:    ptr(int64(7)),
		Companies: []model.Company{{CompanyName: ptr("A")}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, first.UserID)

	second, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserName:  "Baru",
		Companies: []model.Company{{CompanyName: ptr("B")}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 8, second.UserID)
}

func TestUpsertMergesByBranchBeforeName(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID: ptr(int64(1)),
		Companies: []model.Company{{
			CompanyName:    ptr("PT Lama"),
			CompanyAddress: ptr("Jl. Satu"),
			BranchID:       ptr(int64(3)),
		}},
	})
	require.NoError(t, err)

	// same branch, different name: merges into the existing row
	nested, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID: ptr(int64(1)),
		Companies: []model.Company{{
			CompanyName: ptr("PT Baru"),
			BranchID:    ptr(int64(3)),
		}},
	})
	require.NoError(t, err)
	require.Len(t, nested.Companies, 1)
	assert.Equal(t, "PT Baru", *nested.Companies[0].CompanyName)
	// unset fields preserve the existing values
	assert.Equal(t, "Jl. Satu", *nested.Companies[0].CompanyAddress)
}

func TestUpsertMergesByCompanyNameWithoutBranch(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:    ptr(int64(1)),
		Companies: []model.Company{{CompanyName: ptr("PT Maju")}},
	})
	require.NoError(t, err)

	nested, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID: ptr(int64(1)),
		Companies: []model.Company{{
			CompanyName: ptr("PT Maju"),
			BranchID:    ptr(int64(9)),
		}},
	})
	require.NoError(t, err)
	require.Len(t, nested.Companies, 1)
	assert.EqualValues(t, 9, *nested.Companies[0].BranchID)
}

func TestUpsertAppendsDistinctCompany(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
			UserID:    ptr(int64(1)),
			Companies: []model.Company{{CompanyName: ptr(name)}},
		})
		require.NoError(t, err)
	}

	nested, err := mr.ListNested(ctx)
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Len(t, nested[0].Companies, 2)
}

func TestUpsertWithoutCompaniesOnNewUserFails(t *testing.T) {
	mr, _ := newMemberRepo(t)

	_, err := mr.Upsert(context.Background(), &model.MemberUpsertReq{UserID: ptr(int64(5))})
	assert.True(t, IsValidation(err))
}

func TestUpsertAcceptsSingleCompanyShape(t *testing.T) {
	mr, _ := newMemberRepo(t)

	nested, err := mr.Upsert(context.Background(), &model.MemberUpsertReq{
		UserID:        ptr(int64(2)),
		SingleCompany: &model.Company{CompanyName: ptr("PT Tunggal")},
	})
	require.NoError(t, err)
	require.Len(t, nested.Companies, 1)
}

func TestListSynthesizesMissingUser(t *testing.T) {
	mr, st := newMemberRepo(t)
	ctx := context.Background()
	seedUser(t, st, model.User{ID: 1, Name: "Ada", Role: model.RoleCustomer})

	for _, id := range []int64{1, 2} {
		_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
			UserID:    ptr(id),
			Companies: []model.Company{{CompanyName: ptr("PT X")}},
		})
		require.NoError(t, err)
	}

	entries, err := mr.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada", entries[0].User.Name)
	assert.Equal(t, model.DefaultUserName(2), entries[1].User.Name)
	assert.Equal(t, model.RoleCustomer, entries[1].User.Role)
}

func TestListNestedGroupsPerUser(t *testing.T) {
	mr, st := newMemberRepo(t)
	ctx := context.Background()
	seedUser(t, st, model.User{ID: 1, Name: "Ada"})

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:             ptr(int64(1)),
		IsPhoneVerifiedOTP: ptr(true),
		Companies: []model.Company{
			{CompanyName: ptr("A")},
			{CompanyName: ptr("B")},
		},
	})
	require.NoError(t, err)

	nested, err := mr.ListNested(ctx)
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Equal(t, "Ada", nested[0].UserName)
	assert.True(t, nested[0].IsPhoneVerifiedOTP)
	assert.Len(t, nested[0].Companies, 2)
}

func TestApproveSetsMemberSinceOnce(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:    ptr(int64(1)),
		Companies: []model.Company{{CompanyName: ptr("PT X")}},
	})
	require.NoError(t, err)

	row, err := mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 1, AdminID: 99,
	})
	require.NoError(t, err)
	require.NotNil(t, row.MemberSince)
	first := *row.MemberSince
	assert.EqualValues(t, 99, *row.ApprovedRejectedByAdminID)

	// reject then re-approve: member_since keeps its original stamp
	_, err = mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionReject, UserID: 1, AdminID: 99,
		RejectReason: ptr("dokumen kurang"),
	})
	require.NoError(t, err)

	row, err = mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 1, AdminID: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, first, *row.MemberSince)
	assert.Nil(t, row.RejectReason)
}

func TestRejectRequiresReason(t *testing.T) {
	mr, st := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:    ptr(int64(1)),
		Companies: []model.Company{{CompanyName: ptr("PT X")}},
	})
	require.NoError(t, err)
	before := st.Revision(model.CollectionMembers)

	for _, reason := range []*string{nil, ptr(""), ptr("   ")} {
		_, err := mr.Transition(ctx, &model.MemberActionReq{
			Action: model.ActionReject, UserID: 1, AdminID: 9, RejectReason: reason,
		})
		assert.True(t, IsValidation(err))
	}
	// validation happens before any store mutation
	assert.Equal(t, before, st.Revision(model.CollectionMembers))
}

func TestRejectStampsReason(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:    ptr(int64(1)),
		Companies: []model.Company{{CompanyName: ptr("PT X")}},
	})
	require.NoError(t, err)

	row, err := mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionReject, UserID: 1, AdminID: 9,
		RejectReason: ptr("data tidak valid"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MemberStatusRejected, row.MemberStatus)
	assert.Equal(t, "data tidak valid", *row.RejectReason)
	assert.NotNil(t, row.ApprovedRejectedDate)
}

func TestTransitionAmbiguousWithoutBranch(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID: ptr(int64(1)),
		Companies: []model.Company{
			{CompanyName: ptr("A"), BranchID: ptr(int64(1))},
			{CompanyName: ptr("B"), BranchID: ptr(int64(2))},
		},
	})
	require.NoError(t, err)

	_, err = mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 1, AdminID: 9,
	})
	assert.True(t, IsValidation(err))

	// branch discriminator resolves it
	row, err := mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 1, BranchID: ptr(int64(2)), AdminID: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "B", *row.CompanyName)

	// company name works as the fallback discriminator
	row, err = mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 1, CompanyName: ptr("A"), AdminID: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "A", *row.CompanyName)
}

func TestTransitionUnknownMembership(t *testing.T) {
	mr, _ := newMemberRepo(t)

	_, err := mr.Transition(context.Background(), &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 404, AdminID: 9,
	})
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestTransitionInvalidAction(t *testing.T) {
	mr, _ := newMemberRepo(t)

	_, err := mr.Transition(context.Background(), &model.MemberActionReq{
		Action: "promote", UserID: 1, AdminID: 9,
	})
	assert.True(t, IsValidation(err))
}

func TestRepeatApproveRestampsAudit(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID:    ptr(int64(1)),
		Companies: []model.Company{{CompanyName: ptr("PT X")}},
	})
	require.NoError(t, err)

	first, err := mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 1, AdminID: 9,
	})
	require.NoError(t, err)

	second, err := mr.Transition(ctx, &model.MemberActionReq{
		Action: model.ActionApprove, UserID: 1, AdminID: 10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, *second.ApprovedRejectedByAdminID)
	assert.Equal(t, *first.MemberSince, *second.MemberSince)
}

func TestDeleteByBranchAndAll(t *testing.T) {
	mr, _ := newMemberRepo(t)
	ctx := context.Background()

	_, err := mr.Upsert(ctx, &model.MemberUpsertReq{
		UserID: ptr(int64(1)),
		Companies: []model.Company{
			{CompanyName: ptr("A"), BranchID: ptr(int64(1))},
			{CompanyName: ptr("B"), BranchID: ptr(int64(2))},
		},
	})
	require.NoError(t, err)

	require.NoError(t, mr.Delete(ctx, &model.MemberDeleteReq{UserID: 1, BranchID: ptr(int64(1))}))
	nested, err := mr.ListNested(ctx)
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Len(t, nested[0].Companies, 1)

	require.NoError(t, mr.Delete(ctx, &model.MemberDeleteReq{UserID: 1}))
	nested, err = mr.ListNested(ctx)
	require.NoError(t, err)
	assert.Empty(t, nested)

	err = mr.Delete(ctx, &model.MemberDeleteReq{UserID: 1})
	assert.True(t, errors.Is(err, ErrMembershipNotFound))
}
