package combine

import (
	"context"

	domcombine "github.com/kailas-cloud/zagg/internal/domain/combine"
	"github.com/kailas-cloud/zagg/internal/domain/zset"
)

// Repository defines the storage contract for sorted set aggregation.
type Repository interface {
	Add(ctx context.Context, key string, members []zset.Member) (int64, error)
	Range(ctx context.Context, key string, start, stop int64) ([]zset.Member, error)
	Store(ctx context.Context, req *domcombine.Request) (int64, error)
	Combine(ctx context.Context, req *domcombine.Request) ([]zset.Member, error)
}
