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

// Package store implements the durable flat-file record store: one JSON
// document per named collection, each a top-level array of id-bearing
// records.
package store

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IStore is the record store contract. Read failures never surface as
// errors: an absent or malformed collection is "no data yet". Write
// failures do surface, wrapped in *StorageError.
type IStore interface {
	// Read decodes the whole collection into out (a pointer to a slice).
	// Absent, empty or malformed collections leave out empty and return nil.
	Read(ctx context.Context, collection string, out any) error

	// Write replaces the whole collection atomically from the caller's
	// perspective and bumps the collection revision.
	Write(ctx context.Context, collection string, records any) error

	// NextID returns one greater than the maximum numeric value of field
	// across the collection, or 1 when the collection is empty. Not
	// race-free across processes; serialize with Update.
	NextID(ctx context.Context, collection, field string) (int64, error)

	// Update serializes a read-modify-write cycle on one collection
	// against other in-process writers.
	Update(ctx context.Context, collection string, fn func(ctx context.Context) error) error

	// Revision reports the monotonic in-process revision of a collection,
	// bumped on every successful Write.
	Revision(collection string) uint64
}

var (
	readsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ekatalog_store_reads_total",
		Help: "Collection reads, by collection and outcome.",
	}, []string{"collection", "outcome"})

	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ekatalog_store_writes_total",
		Help: "Collection writes, by collection and outcome.",
	}, []string{"collection", "outcome"})
)

const (
	outcomeOK        = "ok"
	outcomeEmpty     = "empty"
	outcomeMalformed = "malformed"
	outcomeError     = "error"
)
