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
	"embed"
	"fmt"

	"github.com/bytedance/sonic"
)

//go:embed seeddata/*.json
var seedFS embed.FS

// Seed is the last tier: datasets bundled into the binary so a fresh
// install renders something before it ever reaches the network.
type Seed struct{}

func NewSeed() *Seed {
	return &Seed{}
}

func (s *Seed) Name() Origin {
	return OriginSeed
}

func (s *Seed) Load(ctx context.Context, dataset string) (Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := seedFS.ReadFile("seeddata/" + dataset + ".json")
	if err != nil {
		return nil, fmt.Errorf("no seed for dataset %q", dataset)
	}

	var records Records
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("seed for %q malformed: %w", dataset, err)
	}
	return records, nil
}

// SeedData returns the raw bundled document of a dataset, for the seed
// command that materializes it into a store dir.
func SeedData(dataset string) ([]byte, error) {
	return seedFS.ReadFile("seeddata/" + dataset + ".json")
}

// SeedDatasets lists the bundled dataset names.
func SeedDatasets() []string {
	entries, err := seedFS.ReadDir("seeddata")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		names = append(names, name[:len(name)-len(".json")])
	}
	return names
}
