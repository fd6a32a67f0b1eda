package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudaprayogaIT/cms-adminEkatalog/internal/ekatalog/model"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/event"
)

func testConf(baseURL string) Conf {
	return Conf{
		BaseURL:     baseURL,
		ContextPath: "/api",
		Timeout:     2,
		RetryMax:    1,
	}
}

// fakeServer serves the unified envelope around an in-memory dataset map
// and counts mutations.
type fakeServer struct {
	data      map[string]Records
	mutations int64
	failMut   bool
	failGet   bool
}

func (f *fakeServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodGet {
			atomic.AddInt64(&f.mutations, 1)
			if f.failMut {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"code":5000,"errMsg":"boom"}`))
				return
			}
			_, _ = w.Write([]byte(`{"code":200,"msg":"Request Success"}`))
			return
		}

		if f.failGet {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":5000,"errMsg":"boom"}`))
			return
		}

		dataset := r.URL.Path[len("/api/"):]
		records, ok := f.data[dataset]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":4004,"errMsg":"Not found"}`))
			return
		}
		raw, _ := sonic.Marshal(map[string]any{
			"code": 200, "msg": "Request Success", "detail": records,
		})
		_, _ = w.Write(raw)
	}
}

func TestLoadFromRemote(t *testing.T) {
	fake := &fakeServer{data: map[string]Records{
		"branches": {{"id": float64(1), "name": "Pusat"}},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := New(testConf(srv.URL), event.NewBus())
	res := c.Load(context.Background(), "branches")

	assert.Equal(t, OriginRemote, res.Origin)
	assert.False(t, res.Stale)
	require.Len(t, res.Records, 1)
}

func TestLoadFallsBackToSnapshot(t *testing.T) {
	fake := &fakeServer{data: map[string]Records{
		"branches": {{"id": float64(1), "name": "Pusat"}},
	}}
	srv := httptest.NewServer(fake.handler())

	c := New(testConf(srv.URL), event.NewBus())
	ctx := context.Background()

	// remote hit populates the snapshot
	res := c.Load(ctx, "branches")
	require.Equal(t, OriginRemote, res.Origin)

	srv.Close()

	res = c.Load(ctx, "branches")
	assert.Equal(t, OriginSnapshot, res.Origin)
	assert.True(t, res.Stale)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Pusat", res.Records[0]["name"])
}

func TestLoadFallsBackToSeed(t *testing.T) {
	c := New(testConf("http://127.0.0.1:1"), event.NewBus())

	res := c.Load(context.Background(), "branches")
	assert.Equal(t, OriginSeed, res.Origin)
	assert.True(t, res.Stale)
	assert.NotEmpty(t, res.Records)
}

func TestSeedHitWarmsSnapshot(t *testing.T) {
	c := New(testConf("http://127.0.0.1:1"), event.NewBus())
	ctx := context.Background()

	res := c.Load(ctx, "branches")
	require.Equal(t, OriginSeed, res.Origin)

	// the seed result is cached, so the snapshot tier serves from now on
	cached, err := c.snapshot.Load(ctx, "branches")
	require.NoError(t, err)
	assert.Equal(t, res.Records, cached)

	res = c.Load(ctx, "branches")
	assert.Equal(t, OriginSnapshot, res.Origin)
}

func TestLoadExhaustedIsEmptyNotError(t *testing.T) {
	c := New(testConf("http://127.0.0.1:1"), event.NewBus())

	res := c.Load(context.Background(), "nonexistent")
	assert.Equal(t, OriginEmpty, res.Origin)
	assert.True(t, res.Stale)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
}

func TestMutateRemoteFirstResyncsSnapshot(t *testing.T) {
	fake := &fakeServer{data: map[string]Records{
		"branches": {{"id": float64(1), "name": "Pusat"}},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	bus := event.NewBus()
	var got event.Event
	done := make(chan struct{})
	bus.Subscribe("branches", func(e event.Event) {
		got = e
		close(done)
	})

	c := New(testConf(srv.URL), bus)
	err := c.Mutate(context.Background(), "branches", Op{
		Kind:   OpCreate,
		Record: map[string]any{"name": "Cabang"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&fake.mutations))

	<-done
	assert.Equal(t, event.TypeUpdated, got.Type)
	assert.Equal(t, "branches", got.Dataset)
}

func TestMutateKeepsWriteWhenResyncFails(t *testing.T) {
	// mutations land but every refetch fails
	fake := &fakeServer{failGet: true}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	bus := event.NewBus()
	var seen []event.Type
	bus.Subscribe("branches", func(e event.Event) { seen = append(seen, e.Type) })

	c := New(testConf(srv.URL), bus)
	ctx := context.Background()

	err := c.Mutate(ctx, "branches", Op{
		Kind:   OpCreate,
		Record: map[string]any{"name": "Cabang Batam"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(&fake.mutations))
	assert.Equal(t, []event.Type{event.TypeUpdated}, seen)

	// the confirmed write is readable even though the refetch never landed
	res := c.Load(ctx, "branches")
	assert.Equal(t, OriginSnapshot, res.Origin)
	found := false
	for _, rec := range res.Records {
		if rec["name"] == "Cabang Batam" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMemberMutationsNeverAppliedLocally(t *testing.T) {
	c := New(testConf("http://127.0.0.1:1"), event.NewBus())
	ctx := context.Background()

	var events int
	c.Bus().Subscribe(model.CollectionMembers, func(event.Event) { events++ })

	before := c.Load(ctx, model.CollectionMembers)

	err := c.Mutate(ctx, model.CollectionMembers, Op{
		Kind:   OpCreate,
		Record: map[string]any{"user_name": "Budi", "user_id": float64(9)},
	})
	require.Error(t, err)
	assert.Zero(t, events)

	after := c.Load(ctx, model.CollectionMembers)
	assert.Equal(t, before.Records, after.Records)
}

func TestMutateOfflineAppliesLocally(t *testing.T) {
	c := New(testConf("http://127.0.0.1:1"), event.NewBus())
	ctx := context.Background()

	var seen []event.Type
	c.Bus().Subscribe("branches", func(e event.Event) {
		seen = append(seen, e.Type)
	})

	err := c.Mutate(ctx, "branches", Op{
		Kind:   OpCreate,
		Record: map[string]any{"name": "Cabang Medan"},
	})
	require.NoError(t, err)
	require.Equal(t, []event.Type{event.TypeLocal}, seen)

	// read-your-writes: the local create is visible on the next load
	res := c.Load(ctx, "branches")
	assert.Equal(t, OriginSnapshot, res.Origin)
	found := false
	for _, rec := range res.Records {
		if rec["name"] == "Cabang Medan" {
			found = true
			// local next id continues from the seeded max
			id, ok := recordID(rec)
			require.True(t, ok)
			assert.EqualValues(t, 4, id)
		}
	}
	assert.True(t, found)
}

func TestMutateOfflineUpdateAndDelete(t *testing.T) {
	c := New(testConf("http://127.0.0.1:1"), event.NewBus())
	ctx := context.Background()

	require.NoError(t, c.Mutate(ctx, "branches", Op{
		Kind: OpUpdate, ID: 1, Record: map[string]any{"name": "Pusat Baru"},
	}))
	res := c.Load(ctx, "branches")
	assert.Equal(t, "Pusat Baru", res.Records[0]["name"])

	require.NoError(t, c.Mutate(ctx, "branches", Op{Kind: OpDelete, ID: 1}))
	res = c.Load(ctx, "branches")
	for _, rec := range res.Records {
		if id, ok := recordID(rec); ok {
			assert.NotEqualValues(t, 1, id)
		}
	}

	err := c.Mutate(ctx, "branches", Op{Kind: OpDelete, ID: 999})
	assert.Error(t, err)
}

func TestActionNeverAppliedOptimistically(t *testing.T) {
	c := New(testConf("http://127.0.0.1:1"), event.NewBus())
	ctx := context.Background()

	var events int
	c.Bus().Subscribe(model.CollectionMembers, func(event.Event) { events++ })

	before := c.Load(ctx, model.CollectionMembers)

	reason := "dokumen kurang"
	err := c.Mutate(ctx, model.CollectionMembers, Op{
		Kind: OpAction,
		Action: &model.MemberActionReq{
			Action: model.ActionReject, UserID: 4, AdminID: 2, RejectReason: &reason,
		},
	})
	require.Error(t, err)
	assert.Zero(t, events)

	after := c.Load(ctx, model.CollectionMembers)
	assert.Equal(t, before.Records, after.Records)
}

func TestStartAutoResync(t *testing.T) {
	fake := &fakeServer{data: map[string]Records{
		"branches": {{"id": float64(1), "name": "Pusat"}},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	bus := event.NewBus()
	notified := make(chan event.Event, 4)
	bus.Subscribe("branches", func(e event.Event) { notified <- e })

	c := New(testConf(srv.URL), bus)
	stop, err := c.StartAutoResync("@every 100ms", "branches")
	require.NoError(t, err)
	defer stop()

	select {
	case e := <-notified:
		assert.Equal(t, event.TypeUpdated, e.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("no resync notification")
	}

	// the refreshed snapshot serves loads once the remote goes away
	srv.Close()
	res := c.Load(context.Background(), "branches")
	assert.Equal(t, OriginSnapshot, res.Origin)
}

func TestSeedDatasets(t *testing.T) {
	names := SeedDatasets()
	assert.Contains(t, names, "branches")
	assert.Contains(t, names, "members")
	assert.Contains(t, names, "users")

	raw, err := SeedData("branches")
	require.NoError(t, err)
	var records Records
	require.NoError(t, sonic.Unmarshal(raw, &records))
	assert.NotEmpty(t, records)
}
