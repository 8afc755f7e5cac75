package zagg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/zagg/internal/db"
	dbRedis "github.com/kailas-cloud/zagg/internal/db/redis"
	"github.com/kailas-cloud/zagg/internal/domain"
	zsetrepo "github.com/kailas-cloud/zagg/internal/repository/zset"
	combineuc "github.com/kailas-cloud/zagg/internal/usecase/combine"
	healthuc "github.com/kailas-cloud/zagg/internal/usecase/health"
	"github.com/kailas-cloud/zagg/internal/version"
)

const defaultReadinessTimeout = 10 * time.Second

// aggregationStore is the subset of db.Store the client drives directly.
type aggregationStore interface {
	db.Pinger
	db.SortedSetStore
	db.BinarySortedSetStore
	Close()
}

// Internal interfaces for substitution in tests.
type setUseCase interface {
	Add(ctx context.Context, key string, members []Member) (int64, error)
	Range(ctx context.Context, key string, start, stop int64) ([]Member, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the zagg SDK entry point.
type Client struct {
	store     aggregationStore
	sets      setUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("zagg: database address required (use WithValkey or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("zagg: database not ready: %w", err)
	}

	return wireClient(store, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Username:   cfg.username,
			Password:   cfg.password,
			ClientName: cfg.clientName,
			LibVersion: version.Version,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("zagg: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("zagg: unknown driver %q", cfg.driver)
	}
}

func wireClient(store aggregationStore, obs *observer) *Client {
	return &Client{
		store:     store,
		sets:      combineuc.New(zsetrepo.New(store, "")),
		healthSvc: healthuc.New(store, 0),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component -> "ok"/"error"
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// Add upserts members into the sorted set at key and returns how many were new.
func (c *Client) Add(ctx context.Context, key string, members ...Member) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add", start, err) }()

	n, err = c.sets.Add(ctx, key, members)
	if err != nil {
		return 0, fmt.Errorf("zagg: %w", err)
	}
	return n, nil
}

// Range returns members of key by rank with their scores. Negative
// indexes count from the end, so Range(ctx, key, 0, -1) reads the whole set.
func (c *Client) Range(ctx context.Context, key string, start, stop int64) (members []Member, err error) {
	began := time.Now()
	defer func() { c.obs.observe("range", began, err) }()

	members, err = c.sets.Range(ctx, key, start, stop)
	if err != nil {
		return nil, fmt.Errorf("zagg: %w", err)
	}
	return members, nil
}

// UnionStore runs ZUNIONSTORE dest and returns the cardinality of dest.
func (c *Client) UnionStore(ctx context.Context, dest string, opts TextOptions) (int64, error) {
	return runStore(ctx, c, "union_store", dest, opts, c.store.ZUnionStore)
}

// InterStore runs ZINTERSTORE dest and returns the cardinality of dest.
func (c *Client) InterStore(ctx context.Context, dest string, opts TextOptions) (int64, error) {
	return runStore(ctx, c, "inter_store", dest, opts, c.store.ZInterStore)
}

// Union runs ZUNION and returns member names in score order.
func (c *Client) Union(ctx context.Context, opts TextOptions) ([]string, error) {
	members, err := runRead(ctx, c, "union", opts, false, c.store.ZUnion)
	return names(members), err
}

// UnionWithScores runs ZUNION ... WITHSCORES.
func (c *Client) UnionWithScores(ctx context.Context, opts TextOptions) ([]Member, error) {
	return runRead(ctx, c, "union", opts, true, c.store.ZUnion)
}

// Inter runs ZINTER and returns member names in score order.
func (c *Client) Inter(ctx context.Context, opts TextOptions) ([]string, error) {
	members, err := runRead(ctx, c, "inter", opts, false, c.store.ZInter)
	return names(members), err
}

// InterWithScores runs ZINTER ... WITHSCORES.
func (c *Client) InterWithScores(ctx context.Context, opts TextOptions) ([]Member, error) {
	return runRead(ctx, c, "inter", opts, true, c.store.ZInter)
}

// UnionStoreBinary is UnionStore for binary keys.
func (c *Client) UnionStoreBinary(ctx context.Context, dest []byte, opts BinaryOptions) (int64, error) {
	return runStore(ctx, c, "union_store", dest, opts, c.store.ZUnionStoreBinary)
}

// InterStoreBinary is InterStore for binary keys.
func (c *Client) InterStoreBinary(ctx context.Context, dest []byte, opts BinaryOptions) (int64, error) {
	return runStore(ctx, c, "inter_store", dest, opts, c.store.ZInterStoreBinary)
}

// UnionBinary is UnionWithScores for binary keys. Member names are byte-exact.
func (c *Client) UnionBinary(ctx context.Context, opts BinaryOptions, withScores bool) ([]Member, error) {
	return runRead(ctx, c, "union", opts, withScores, c.store.ZUnionBinary)
}

// InterBinary is InterWithScores for binary keys. Member names are byte-exact.
func (c *Client) InterBinary(ctx context.Context, opts BinaryOptions, withScores bool) ([]Member, error) {
	return runRead(ctx, c, "inter", opts, withScores, c.store.ZInterBinary)
}

type (
	storeFn[T Token] func(ctx context.Context, dest T, opts Options[T]) (int64, error)
	readFn[T Token]  func(ctx context.Context, opts Options[T], withScores bool) ([]Member, error)
)

func runStore[T Token](ctx context.Context, c *Client, op string, dest T, opts Options[T], fn storeFn[T],
) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, err) }()

	if len(dest) == 0 {
		return 0, fmt.Errorf("zagg: %s: %w: destination is required", op, domain.ErrInvalidRequest)
	}
	if err = validate(op, opts); err != nil {
		return 0, err
	}
	n, err = fn(ctx, dest, opts)
	if err != nil {
		return 0, fmt.Errorf("zagg: %s: %w", op, err)
	}
	return n, nil
}

func runRead[T Token](ctx context.Context, c *Client, op string, opts Options[T], withScores bool, fn readFn[T],
) (members []Member, err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, err) }()

	if err = validate(op, opts); err != nil {
		return nil, err
	}
	members, err = fn(ctx, opts, withScores)
	if err != nil {
		return nil, fmt.Errorf("zagg: %s: %w", op, err)
	}
	return members, nil
}

// validate rejects requests the server would refuse anyway. The encoder
// itself accepts empty key sets.
func validate[T Token](op string, opts Options[T]) error {
	if opts.Keys.Len() == 0 {
		return fmt.Errorf("zagg: %s: %w: at least one source key is required", op, domain.ErrInvalidRequest)
	}
	if p, ok := opts.Aggregate(); ok && !p.IsValid() {
		return fmt.Errorf("zagg: %s: %w: unsupported aggregate %v", op, domain.ErrInvalidRequest, p)
	}
	return nil
}

func names(members []Member) []string {
	if members == nil {
		return nil
	}
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}
