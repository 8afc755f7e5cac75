package zagg

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/zagg/internal/db"
)

// --- store mock ---

type mockStore struct {
	pingErr   error
	closed    bool
	zadd      func(key string, members []Member) (int64, error)
	zrange    func(key string, start, stop int64) ([]Member, error)
	lastOp    string
	lastDest  string
	lastArgs  []string
	withScore bool
	result    []Member
	stored    int64
	err       error
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }
func (m *mockStore) Close()                     { m.closed = true }

func (m *mockStore) ZAdd(_ context.Context, key string, members []Member) (int64, error) {
	if m.zadd != nil {
		return m.zadd(key, members)
	}
	return int64(len(members)), nil
}

func (m *mockStore) ZRangeWithScores(_ context.Context, key string, start, stop int64) ([]Member, error) {
	if m.zrange != nil {
		return m.zrange(key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) recordStore(op, dest string, args []string) (int64, error) {
	m.lastOp, m.lastDest, m.lastArgs = op, dest, args
	return m.stored, m.err
}

func (m *mockStore) recordRead(op string, args []string, withScores bool) ([]Member, error) {
	m.lastOp, m.lastArgs, m.withScore = op, args, withScores
	return m.result, m.err
}

func (m *mockStore) ZUnionStore(_ context.Context, dest string, opts TextOptions) (int64, error) {
	return m.recordStore(db.OpZUnionStore, dest, opts.Args())
}

func (m *mockStore) ZInterStore(_ context.Context, dest string, opts TextOptions) (int64, error) {
	return m.recordStore(db.OpZInterStore, dest, opts.Args())
}

func (m *mockStore) ZUnion(_ context.Context, opts TextOptions, withScores bool) ([]Member, error) {
	return m.recordRead(db.OpZUnion, opts.Args(), withScores)
}

func (m *mockStore) ZInter(_ context.Context, opts TextOptions, withScores bool) ([]Member, error) {
	return m.recordRead(db.OpZInter, opts.Args(), withScores)
}

func (m *mockStore) ZUnionStoreBinary(_ context.Context, dest []byte, opts BinaryOptions) (int64, error) {
	return m.recordStore(db.OpZUnionStore, string(dest), textArgs(opts))
}

func (m *mockStore) ZInterStoreBinary(_ context.Context, dest []byte, opts BinaryOptions) (int64, error) {
	return m.recordStore(db.OpZInterStore, string(dest), textArgs(opts))
}

func (m *mockStore) ZUnionBinary(_ context.Context, opts BinaryOptions, withScores bool) ([]Member, error) {
	return m.recordRead(db.OpZUnion, textArgs(opts), withScores)
}

func (m *mockStore) ZInterBinary(_ context.Context, opts BinaryOptions, withScores bool) ([]Member, error) {
	return m.recordRead(db.OpZInter, textArgs(opts), withScores)
}

func textArgs(opts BinaryOptions) []string {
	args := opts.Args()
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

func newTestClient(t *testing.T, store *mockStore) *Client {
	t.Helper()
	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	return wireClient(store, obs)
}

// --- construction ---

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	for _, o := range []Option{
		WithRedis("", "a:6379", "b:6379"),
		WithCredentials("alice", "s3cret"),
		WithClientName("reporting"),
		WithStandalone(),
	} {
		o.apply(cfg)
	}

	if cfg.driver != "redis" {
		t.Errorf("driver = %q, want redis", cfg.driver)
	}
	if !reflect.DeepEqual(cfg.addrs, []string{"a:6379", "b:6379"}) {
		t.Errorf("addrs = %v", cfg.addrs)
	}
	if cfg.username != "alice" || cfg.password != "s3cret" {
		t.Errorf("credentials = %q/%q", cfg.username, cfg.password)
	}
	if cfg.clientName != "reporting" {
		t.Errorf("clientName = %q", cfg.clientName)
	}
	if !cfg.standalone {
		t.Error("standalone not set")
	}

	WithValkey("pw", "v:6379").apply(cfg)
	if cfg.driver != "valkey" || cfg.password != "pw" {
		t.Errorf("valkey option: driver=%q password=%q", cfg.driver, cfg.password)
	}
}

func TestClient_Close(t *testing.T) {
	store := &mockStore{}
	c := newTestClient(t, store)
	c.Close()
	if !store.closed {
		t.Error("store not closed")
	}

	(&Client{}).Close() // nil store must not panic
}

// --- aggregation ---

func TestUnionStore_WeightedMax(t *testing.T) {
	store := &mockStore{stored: 3}
	c := newTestClient(t, store)

	opts := NewOptions(Weighted(
		WeightedKey[string]{Key: "setA", Weight: 1},
		WeightedKey[string]{Key: "setB", Weight: 3.5},
	)).WithAggregate(Max)

	n, err := c.UnionStore(context.Background(), "out", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("stored = %d, want 3", n)
	}
	if store.lastOp != db.OpZUnionStore || store.lastDest != "out" {
		t.Errorf("call = %s %s", store.lastOp, store.lastDest)
	}
	want := []string{"2", "setA", "setB", "WEIGHTS", "1.0", "3.5", "AGGREGATE", "MAX"}
	if !reflect.DeepEqual(store.lastArgs, want) {
		t.Errorf("args = %v, want %v", store.lastArgs, want)
	}
}

func TestInterStore_EmptyDestination(t *testing.T) {
	store := &mockStore{}
	c := newTestClient(t, store)

	_, err := c.InterStore(context.Background(), "", NewOptions(Keys("a")))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if store.lastOp != "" {
		t.Error("store must not be called")
	}
}

func TestUnion_NoKeys(t *testing.T) {
	store := &mockStore{}
	c := newTestClient(t, store)

	_, err := c.Union(context.Background(), NewOptions(Keys[string]()))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestUnionStore_InvalidPolicyRejected(t *testing.T) {
	store := &mockStore{}
	c := newTestClient(t, store)

	_, err := c.UnionStore(context.Background(), "out", NewOptions(Keys("a")).WithAggregate(Policy(7)))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if store.lastOp != "" {
		t.Error("store must not be called")
	}
}

func TestUnion_ReturnsNames(t *testing.T) {
	store := &mockStore{result: []Member{{Name: "x"}, {Name: "y"}}}
	c := newTestClient(t, store)

	got, err := c.Union(context.Background(), NewOptions(Keys("x", "y", "z")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("names = %v", got)
	}
	if store.withScore {
		t.Error("WITHSCORES must not be requested")
	}
	if !reflect.DeepEqual(store.lastArgs, []string{"3", "x", "y", "z"}) {
		t.Errorf("args = %v", store.lastArgs)
	}
}

func TestInterWithScores(t *testing.T) {
	store := &mockStore{result: []Member{{Name: "x", Score: 7}}}
	c := newTestClient(t, store)

	got, err := c.InterWithScores(context.Background(), NewOptions(Keys("a", "b")).WithAggregate(Min))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Score != 7 {
		t.Errorf("members = %+v", got)
	}
	if store.lastOp != db.OpZInter || !store.withScore {
		t.Errorf("call = %s withScores=%v", store.lastOp, store.withScore)
	}
}

func TestBinaryVariants(t *testing.T) {
	store := &mockStore{stored: 1}
	c := newTestClient(t, store)
	ctx := context.Background()

	key := []byte{0xff, 0x00, 'k'}
	opts := NewOptions(Weighted(WeightedKey[[]byte]{Key: key, Weight: 2})).WithAggregate(Sum)

	if _, err := c.UnionStoreBinary(ctx, []byte("dst"), opts); err != nil {
		t.Fatalf("UnionStoreBinary: %v", err)
	}
	want := []string{"1", string(key), "WEIGHTS", "2.0", "AGGREGATE", "SUM"}
	if !reflect.DeepEqual(store.lastArgs, want) {
		t.Errorf("args = %q, want %q", store.lastArgs, want)
	}

	if _, err := c.InterStoreBinary(ctx, nil, opts); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty binary dest: got %v", err)
	}

	if _, err := c.InterBinary(ctx, opts, true); err != nil {
		t.Fatalf("InterBinary: %v", err)
	}
	if store.lastOp != db.OpZInter || !store.withScore {
		t.Errorf("call = %s withScores=%v", store.lastOp, store.withScore)
	}

	if _, err := c.UnionBinary(ctx, opts, false); err != nil {
		t.Fatalf("UnionBinary: %v", err)
	}
	if store.lastOp != db.OpZUnion || store.withScore {
		t.Errorf("call = %s withScores=%v", store.lastOp, store.withScore)
	}
}

func TestAggregation_StoreErrorIsWrapped(t *testing.T) {
	store := &mockStore{err: &db.Error{Op: db.OpZUnion, Err: db.ErrWrongType}}
	c := newTestClient(t, store)

	_, err := c.UnionWithScores(context.Background(), NewOptions(Keys("a")))
	if !errors.Is(err, ErrWrongType) {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
}

// --- sets ---

func TestAddAndRange(t *testing.T) {
	var gotKey string
	var gotMembers []Member
	store := &mockStore{
		zadd: func(key string, members []Member) (int64, error) {
			gotKey, gotMembers = key, members
			return 2, nil
		},
		zrange: func(_ string, start, stop int64) ([]Member, error) {
			if start != 0 || stop != -1 {
				return nil, fmt.Errorf("unexpected range %d..%d", start, stop)
			}
			return gotMembers, nil
		},
	}
	c := newTestClient(t, store)
	ctx := context.Background()

	n, err := c.Add(ctx, "setA", Member{Name: "a", Score: 1}, Member{Name: "b", Score: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n != 2 || gotKey != "setA" {
		t.Errorf("Add: n=%d key=%q", n, gotKey)
	}

	members, err := c.Range(ctx, "setA", 0, -1)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("Range: %+v", members)
	}
}

func TestAdd_NoMembers(t *testing.T) {
	c := newTestClient(t, &mockStore{})
	if _, err := c.Add(context.Background(), "setA"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAdd_ClosedClient(t *testing.T) {
	store := &mockStore{zadd: func(string, []Member) (int64, error) {
		return 0, &db.Error{Op: db.OpZAdd, Err: db.ErrClosed}
	}}
	c := newTestClient(t, store)

	_, err := c.Add(context.Background(), "setA", Member{Name: "a"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

// --- health & observability ---

func TestPingAndHealth(t *testing.T) {
	store := &mockStore{}
	c := newTestClient(t, store)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if h := c.Health(context.Background()); h.Status != "ok" || h.Checks["database"] != "ok" {
		t.Errorf("health = %+v", h)
	}

	store.pingErr = errors.New("down")
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
	if h := c.Health(context.Background()); h.Status != "degraded" {
		t.Errorf("health = %+v", h)
	}
}

func TestObserver_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	core, logs := zapobserver.New(zap.DebugLevel)

	obs, err := newObserver(zap.New(core), reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	store := &mockStore{}
	c := wireClient(store, obs)

	_, _ = c.Union(context.Background(), NewOptions(Keys("a")))
	store.err = errors.New("boom")
	_, _ = c.Union(context.Background(), NewOptions(Keys("a")))

	if v := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("union", "ok")); v != 1 {
		t.Errorf("ok count = %v, want 1", v)
	}
	if v := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("union", "error")); v != 1 {
		t.Errorf("error count = %v, want 1", v)
	}
	if n := logs.FilterMessage("operation failed").Len(); n != 1 {
		t.Errorf("failed log lines = %d, want 1", n)
	}
	if n := logs.FilterMessage("operation completed").Len(); n != 1 {
		t.Errorf("completed log lines = %d, want 1", n)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the already registered collector to be reused")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("noop", time.Now(), nil)
}

func TestImport_LeavesDefaultRegistryClean(t *testing.T) {
	// The server's HTTP collectors are only registered by cmd/zagg.
	for _, name := range []string{"requests_total", "requests_in_flight"} {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "zagg", Subsystem: "http", Name: name, Help: "h"})
		if err := prometheus.Register(c); err != nil {
			t.Errorf("zagg_http_%s already in the default registry: %v", name, err)
			continue
		}
		prometheus.Unregister(c)
	}
}
