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

package client

import (
	"context"
	"errors"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
)

// errSnapshotMiss signals the chain to fall through to the seed tier.
var errSnapshotMiss = errors.New("snapshot miss")

// Snapshot is the write-through cache tier. One entry per dataset; an empty
// dataset is a valid hit, only an absent one is a miss.
type Snapshot struct {
	cache *fastcache.Cache
}

func NewSnapshot(maxBytes int) *Snapshot {
	return &Snapshot{cache: fastcache.New(maxBytes)}
}

func (s *Snapshot) Name() Origin {
	return OriginSnapshot
}

func key(dataset string) []byte {
	return []byte("dataset:" + dataset)
}

func (s *Snapshot) Load(ctx context.Context, dataset string) (Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := s.cache.GetBig(nil, key(dataset))
	if len(raw) == 0 {
		return nil, errSnapshotMiss
	}

	var records Records
	if err := sonic.Unmarshal(raw, &records); err != nil {
		// poisoned entry, drop it
		s.cache.Del(key(dataset))
		return nil, errSnapshotMiss
	}
	if records == nil {
		records = Records{}
	}
	return records, nil
}

// Store overwrites the dataset entry. Encoding failures only cost freshness,
// so they are swallowed after invalidating the entry.
func (s *Snapshot) Store(dataset string, records Records) {
	raw, err := sonic.Marshal(records)
	if err != nil {
		s.cache.Del(key(dataset))
		return
	}
	s.cache.SetBig(key(dataset), raw)
}

// Invalidate removes one dataset entry.
func (s *Snapshot) Invalidate(dataset string) {
	s.cache.Del(key(dataset))
}

// Reset drops every entry.
func (s *Snapshot) Reset() {
	s.cache.Reset()
}
