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

// Package client is the three-tier data access layer of the admin console:
// remote API first, local snapshot cache second, bundled seed data last.
package client

import "context"

// Origin identifies which tier served a dataset.
type Origin string

const (
	OriginRemote   Origin = "remote"
	OriginSnapshot Origin = "snapshot"
	OriginSeed     Origin = "seed"
	OriginEmpty    Origin = "empty"
)

// Records is a raw decoded dataset, shape-agnostic.
type Records = []map[string]any

// Source is one tier of the fallback chain. Load returns an error on a miss
// or failure; the chain moves on to the next tier.
type Source interface {
	Name() Origin
	Load(ctx context.Context, dataset string) (Records, error)
}
