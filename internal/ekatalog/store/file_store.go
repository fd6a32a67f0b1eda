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

package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
)

// FileStore keeps each collection as <dir>/<collection>.json, a
// pretty-printed top-level array. Writes go through a temp file + rename so
// a concurrent reader never observes a partial document. Per-collection
// mutexes close the in-process lost-update race; cross-process writers
// remain last-write-wins.
type FileStore struct {
	dir string

	locks sync.Map // collection -> *sync.Mutex

	revMu sync.RWMutex
	revs  map[string]uint64
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:  dir,
		revs: make(map[string]uint64),
	}
}

// Dir returns the data directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) lock(collection string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(collection, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Read decodes the whole collection into out. An absent, empty or malformed
// file is treated as "no data yet": out is reset to an empty slice and nil
// is returned.
func (s *FileStore) Read(ctx context.Context, collection string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resetSlice(out)

	raw, err := os.ReadFile(s.path(collection))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnw("collection unreadable, serving empty",
				"collection", collection, "error", err)
		}
		readsTotal.WithLabelValues(collection, outcomeEmpty).Inc()
		return nil
	}
	if len(raw) == 0 {
		readsTotal.WithLabelValues(collection, outcomeEmpty).Inc()
		return nil
	}

	if err := sonic.Unmarshal(raw, out); err != nil {
		log.Warnw("collection malformed, serving empty",
			"collection", collection, "error", err)
		resetSlice(out)
		readsTotal.WithLabelValues(collection, outcomeMalformed).Inc()
		return nil
	}

	readsTotal.WithLabelValues(collection, outcomeOK).Inc()
	return nil
}

// Write replaces the whole collection. The document lands via temp file +
// rename, creating the data dir if missing.
func (s *FileStore) Write(ctx context.Context, collection string, records any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := sonic.MarshalIndent(records, "", "  ")
	if err != nil {
		writesTotal.WithLabelValues(collection, outcomeError).Inc()
		return &StorageError{Op: "encode", Collection: collection, Err: err}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		writesTotal.WithLabelValues(collection, outcomeError).Inc()
		return &StorageError{Op: "mkdir", Collection: collection, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		writesTotal.WithLabelValues(collection, outcomeError).Inc()
		return &StorageError{Op: "create", Collection: collection, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		writesTotal.WithLabelValues(collection, outcomeError).Inc()
		return &StorageError{Op: "write", Collection: collection, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		writesTotal.WithLabelValues(collection, outcomeError).Inc()
		return &StorageError{Op: "close", Collection: collection, Err: err}
	}

	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		writesTotal.WithLabelValues(collection, outcomeError).Inc()
		return &StorageError{Op: "rename", Collection: collection, Err: err}
	}

	s.revMu.Lock()
	s.revs[collection]++
	s.revMu.Unlock()

	writesTotal.WithLabelValues(collection, outcomeOK).Inc()
	return nil
}

// NextID scans the raw collection for the maximum numeric value of field
// and returns max+1, or 1 for an empty collection.
func (s *FileStore) NextID(ctx context.Context, collection, field string) (int64, error) {
	var records []map[string]any
	if err := s.Read(ctx, collection, &records); err != nil {
		return 0, err
	}

	var max int64
	for _, rec := range records {
		if v, ok := numericField(rec, field); ok && v > max {
			max = v
		}
	}
	return max + 1, nil
}

// Update runs fn while holding the collection's write lock, serializing
// read-modify-write cycles against other in-process writers.
func (s *FileStore) Update(ctx context.Context, collection string, fn func(ctx context.Context) error) error {
	mu := s.lock(collection)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

// Revision reports the in-process revision counter of a collection.
func (s *FileStore) Revision(collection string) uint64 {
	s.revMu.RLock()
	defer s.revMu.RUnlock()
	return s.revs[collection]
}

func numericField(rec map[string]any, field string) (int64, bool) {
	switch v := rec[field].(type) {
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

// resetSlice sets *out to a zero-length slice so "no data" decodes to an
// empty, non-nil result.
func resetSlice(out any) {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Slice {
		return
	}
	elem.Set(reflect.MakeSlice(elem.Type(), 0, 0))
}
