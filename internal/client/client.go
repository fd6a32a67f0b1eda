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
	"fmt"

	"github.com/robfig/cron"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/event"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
)

type Conf struct {
	BaseURL          string
	ContextPath      string
	Timeout          int // seconds
	RetryMax         int
	SnapshotMaxBytes int
	ResyncCron       string // cron spec, empty disables auto resync
}

func (c *Conf) SetDefaults() {
	if c.ContextPath == "" {
		c.ContextPath = "/api"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 3
	}
	if c.SnapshotMaxBytes <= 0 {
		c.SnapshotMaxBytes = 32 * 1024 * 1024
	}
}

// OpKind names a mutation shape.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
	OpAction OpKind = "action"
)

// Op is one mutation against a dataset.
type Op struct {
	Kind   OpKind
	Record map[string]any         // create and update payload
	ID     int64                  // update and delete target
	Action *model.MemberActionReq // approve or reject payload
}

// Result is what Load hands back. Stale marks anything not served by the
// remote tier so callers can surface reduced freshness.
type Result struct {
	Records Records
	Origin  Origin
	Stale   bool
}

// Client walks remote, snapshot and seed in order. Load never fails: the
// worst case is an empty dataset.
type Client struct {
	conf     Conf
	remote   *Remote
	snapshot *Snapshot
	chain    []Source
	bus      *event.Bus
	cron     *cron.Cron
}

func New(conf Conf, bus *event.Bus) *Client {
	conf.SetDefaults()

	remote := NewRemote(conf)
	snapshot := NewSnapshot(conf.SnapshotMaxBytes)

	return &Client{
		conf:     conf,
		remote:   remote,
		snapshot: snapshot,
		chain:    []Source{remote, snapshot, NewSeed()},
		bus:      bus,
	}
}

// Bus exposes the invalidation bus for subscribers.
func (c *Client) Bus() *event.Bus {
	return c.bus
}

func (c *Client) Load(ctx context.Context, dataset string) Result {
	for _, src := range c.chain {
		records, err := src.Load(ctx, dataset)
		if err != nil {
			if src.Name() == OriginRemote {
				log.Warnw("remote load failed, falling back",
					"dataset", dataset, "error", err)
			}
			continue
		}

		origin := src.Name()
		// remote hits refresh the snapshot, seed hits warm a cold one
		if origin == OriginRemote || origin == OriginSeed {
			c.snapshot.Store(dataset, records)
		}
		return Result{Records: records, Origin: origin, Stale: origin != OriginRemote}
	}

	return Result{Records: Records{}, Origin: OriginEmpty, Stale: true}
}

// Mutate sends the operation to the remote first. Generic data operations
// fall back to an optimistic local apply when the remote is unreachable;
// approval actions never do.
func (c *Client) Mutate(ctx context.Context, dataset string, op Op) error {
	remoteErr := c.remote.Apply(ctx, dataset, op)
	if remoteErr == nil {
		if err := c.Resync(ctx, dataset); err != nil && op.Kind != OpAction {
			// the write is confirmed but the refetch failed; fold the op
			// into the snapshot so read-your-writes holds during the outage
			if aerr := c.applyLocal(ctx, dataset, op); aerr != nil {
				log.Warnw("post-mutate snapshot repair failed",
					"dataset", dataset, "op", op.Kind, "error", aerr)
			}
		}
		c.publish(dataset, event.TypeUpdated, op)
		return nil
	}

	if op.Kind == OpAction {
		// approvals are never reflected before the server confirms them
		return remoteErr
	}

	log.Warnw("remote mutate failed, applying locally",
		"dataset", dataset, "op", op.Kind, "error", remoteErr)

	if err := c.applyLocal(ctx, dataset, op); err != nil {
		return err
	}
	c.publish(dataset, event.TypeLocal, op)
	return nil
}

// Resync refetches the authoritative dataset into the snapshot. Failure
// only costs freshness.
func (c *Client) Resync(ctx context.Context, dataset string) error {
	records, err := c.remote.Load(ctx, dataset)
	if err != nil {
		log.Warnw("resync failed", "dataset", dataset, "error", err)
		return err
	}
	c.snapshot.Store(dataset, records)
	return nil
}

// StartAutoResync schedules a periodic refresh of the given datasets and
// returns a stop func. An empty spec falls back to the configured
// ResyncCron; if that is empty too, auto resync stays disabled.
func (c *Client) StartAutoResync(spec string, datasets ...string) (func(), error) {
	if spec == "" {
		spec = c.conf.ResyncCron
	}
	if spec == "" {
		return func() {}, nil
	}

	cr := cron.New()
	err := cr.AddFunc(spec, func() {
		ctx := context.Background()
		for _, dataset := range datasets {
			records, err := c.remote.Load(ctx, dataset)
			if err != nil {
				log.Warnw("auto resync failed", "dataset", dataset, "error", err)
				continue
			}
			c.snapshot.Store(dataset, records)
			c.publish(dataset, event.TypeUpdated, nil)
		}
	})
	if err != nil {
		return nil, err
	}

	cr.Start()
	c.cron = cr
	return cr.Stop, nil
}

func (c *Client) publish(dataset string, typ event.Type, payload any) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(event.Event{Dataset: dataset, Type: typ, Payload: payload})
}

// applyLocal mirrors the server's generic CRUD semantics against the
// snapshot so the UI keeps moving while the remote is down. It only serves
// the id-keyed generic collections: members records are keyed by user_id
// and merged server-side, which this path cannot mirror.
func (c *Client) applyLocal(ctx context.Context, dataset string, op Op) error {
	if dataset == model.CollectionMembers {
		return fmt.Errorf("dataset %q cannot be mutated locally", dataset)
	}

	records := c.loadLocal(ctx, dataset)

	switch op.Kind {
	case OpCreate:
		rec := op.Record
		if rec == nil {
			rec = map[string]any{}
		}
		rec["id"] = nextLocalID(records)
		records = append(records, rec)
	case OpUpdate:
		i := localIndexByID(records, op.ID)
		if i < 0 {
			return fmt.Errorf("local %s: record %d not found", dataset, op.ID)
		}
		for k, v := range op.Record {
			if k == "id" {
				continue
			}
			records[i][k] = v
		}
	case OpDelete:
		i := localIndexByID(records, op.ID)
		if i < 0 {
			return fmt.Errorf("local %s: record %d not found", dataset, op.ID)
		}
		records = append(records[:i], records[i+1:]...)
	default:
		return fmt.Errorf("op %q cannot be applied locally", op.Kind)
	}

	c.snapshot.Store(dataset, records)
	return nil
}

// loadLocal reads the snapshot, then the seed, without touching the remote.
func (c *Client) loadLocal(ctx context.Context, dataset string) Records {
	for _, src := range c.chain[1:] {
		if records, err := src.Load(ctx, dataset); err == nil {
			return records
		}
	}
	return Records{}
}

func nextLocalID(records Records) int64 {
	var max int64
	for _, rec := range records {
		if v, ok := recordID(rec); ok && v > max {
			max = v
		}
	}
	return max + 1
}

func localIndexByID(records Records, id int64) int {
	for i, rec := range records {
		if v, ok := recordID(rec); ok && v == id {
			return i
		}
	}
	return -1
}

func recordID(rec map[string]any) (int64, bool) {
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
