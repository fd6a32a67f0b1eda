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

package repo

import (
	"context"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/store"
)

// Record is a schemaless catalog row. The generic surface does not model
// per-collection shapes; only the numeric id field is interpreted.
type Record = map[string]any

// ICollectionRepository is the generic CRUD contract for the allowlisted
// catalog collections.
type ICollectionRepository interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Create(ctx context.Context, collection string, rec Record) (Record, error)
	UpdateByID(ctx context.Context, collection string, id int64, patch Record) (Record, error)
	DeleteByID(ctx context.Context, collection string, id int64) error
}

type CollectionRepo struct {
	store store.IStore
}

func NewCollectionRepo(st store.IStore) *CollectionRepo {
	return &CollectionRepo{store: st}
}

func (cr *CollectionRepo) List(ctx context.Context, collection string) ([]Record, error) {
	if !model.IsGenericCollection(collection) {
		return nil, ErrUnknownCollection
	}
	var records []Record
	if err := cr.store.Read(ctx, collection, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (cr *CollectionRepo) Create(ctx context.Context, collection string, rec Record) (Record, error) {
	if !model.IsGenericCollection(collection) {
		return nil, ErrUnknownCollection
	}

	var created Record
	err := cr.store.Update(ctx, collection, func(ctx context.Context) error {
		var records []Record
		if err := cr.store.Read(ctx, collection, &records); err != nil {
			return err
		}
		id, err := cr.store.NextID(ctx, collection, "id")
		if err != nil {
			return err
		}

		rec["id"] = id
		records = append(records, rec)
		if err := cr.store.Write(ctx, collection, records); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (cr *CollectionRepo) UpdateByID(ctx context.Context, collection string, id int64, patch Record) (Record, error) {
	if !model.IsGenericCollection(collection) {
		return nil, ErrUnknownCollection
	}

	var updated Record
	err := cr.store.Update(ctx, collection, func(ctx context.Context) error {
		var records []Record
		if err := cr.store.Read(ctx, collection, &records); err != nil {
			return err
		}

		i := indexByID(records, id)
		if i < 0 {
			return ErrRecordNotFound
		}
		for k, v := range patch {
			if k == "id" {
				continue
			}
			records[i][k] = v
		}

		if err := cr.store.Write(ctx, collection, records); err != nil {
			return err
		}
		updated = records[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (cr *CollectionRepo) DeleteByID(ctx context.Context, collection string, id int64) error {
	if !model.IsGenericCollection(collection) {
		return ErrUnknownCollection
	}

	return cr.store.Update(ctx, collection, func(ctx context.Context) error {
		var records []Record
		if err := cr.store.Read(ctx, collection, &records); err != nil {
			return err
		}

		i := indexByID(records, id)
		if i < 0 {
			return ErrRecordNotFound
		}
		records = append(records[:i], records[i+1:]...)

		return cr.store.Write(ctx, collection, records)
	})
}

func indexByID(records []Record, id int64) int {
	for i, rec := range records {
		if v, ok := RecordID(rec); ok && v == id {
			return i
		}
	}
	return -1
}

// RecordID extracts the numeric id of a schemaless record. JSON decoding
// yields float64 for numbers; explicit int types cover hand-built records.
func RecordID(rec Record) (int64, bool) {
	switch v := rec["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
