package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/zagg/internal/domain/aggregate"
	"github.com/kailas-cloud/zagg/internal/domain/zset"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Store interface {
	Pinger
	SortedSetStore
	BinarySortedSetStore
	KVStore
	Admin
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SortedSetStore provides sorted set operations with text keys.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, members []zset.Member) (int64, error)
	ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]zset.Member, error)
	ZUnionStore(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error)
	ZInterStore(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error)
	ZUnion(ctx context.Context, opts aggregate.Options[string], withScores bool) ([]zset.Member, error)
	ZInter(ctx context.Context, opts aggregate.Options[string], withScores bool) ([]zset.Member, error)
}

// BinarySortedSetStore mirrors the aggregation commands for binary keys.
type BinarySortedSetStore interface {
	ZUnionStoreBinary(ctx context.Context, dest []byte, opts aggregate.Options[[]byte]) (int64, error)
	ZInterStoreBinary(ctx context.Context, dest []byte, opts aggregate.Options[[]byte]) (int64, error)
	ZUnionBinary(ctx context.Context, opts aggregate.Options[[]byte], withScores bool) ([]zset.Member, error)
	ZInterBinary(ctx context.Context, opts aggregate.Options[[]byte], withScores bool) ([]zset.Member, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
}

// Admin runs raw commands for server management and diagnostics.
type Admin interface {
	// Exec runs a command on a single node and returns its string reply.
	Exec(ctx context.Context, args ...string) (string, error)
	// ExecAll runs a command on every node of the deployment.
	ExecAll(ctx context.Context, args ...string) error
	// ClientInfo returns CLIENT INFO for the connection serving the call.
	ClientInfo(ctx context.Context) (string, error)
}
