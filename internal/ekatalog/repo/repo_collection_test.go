package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/store"
)

func newCollectionRepo(t *testing.T) *CollectionRepo {
	t.Helper()
	return NewCollectionRepo(store.NewFileStore(t.TempDir()))
}

func TestCollectionCRUD(t *testing.T) {
	cr := newCollectionRepo(t)
	ctx := context.Background()

	created, err := cr.Create(ctx, model.CollectionBranches, Record{"name": "Pusat"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created["id"])

	second, err := cr.Create(ctx, model.CollectionBranches, Record{"name": "Cabang"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, second["id"])

	records, err := cr.List(ctx, model.CollectionBranches)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	updated, err := cr.UpdateByID(ctx, model.CollectionBranches, 2, Record{"name": "Cabang Baru", "id": int64(999)})
	require.NoError(t, err)
	assert.Equal(t, "Cabang Baru", updated["name"])
	// id is never patchable
	id, ok := RecordID(updated)
	require.True(t, ok)
	assert.EqualValues(t, 2, id)

	require.NoError(t, cr.DeleteByID(ctx, model.CollectionBranches, 1))
	records, err = cr.List(ctx, model.CollectionBranches)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestCollectionUnknownName(t *testing.T) {
	cr := newCollectionRepo(t)
	ctx := context.Background()

	_, err := cr.List(ctx, "secrets")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	// members has its own surface and is never served generically
	_, err = cr.List(ctx, model.CollectionMembers)
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestCollectionMissingRecord(t *testing.T) {
	cr := newCollectionRepo(t)
	ctx := context.Background()

	_, err := cr.UpdateByID(ctx, model.CollectionItems, 42, Record{"name": "x"})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	err = cr.DeleteByID(ctx, model.CollectionItems, 42)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
