package zset

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/zagg/internal/db"
	"github.com/kailas-cloud/zagg/internal/domain"
	"github.com/kailas-cloud/zagg/internal/domain/combine"
	domzset "github.com/kailas-cloud/zagg/internal/domain/zset"
)

// store is the consumer interface for sorted set operations (ISP).
type store interface {
	db.SortedSetStore
}

// Repo implements usecase/combine.Repository on top of the text-key store.
type Repo struct {
	store  store
	prefix string
}

// New creates a sorted set repository. prefix is prepended to every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Add upserts members into key.
func (r *Repo) Add(ctx context.Context, key string, members []domzset.Member) (int64, error) {
	n, err := r.store.ZAdd(ctx, r.prefix+key, members)
	if err != nil {
		return 0, fmt.Errorf("zadd %s: %w", key, mapError(err))
	}
	return n, nil
}

// Range returns members of key by rank.
func (r *Repo) Range(ctx context.Context, key string, start, stop int64) ([]domzset.Member, error) {
	members, err := r.store.ZRangeWithScores(ctx, r.prefix+key, start, stop)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", key, mapError(err))
	}
	return members, nil
}

// Store runs ZUNIONSTORE/ZINTERSTORE and returns the destination cardinality.
func (r *Repo) Store(ctx context.Context, req *combine.Request) (int64, error) {
	opts := req.Options(r.prefix)
	dest := r.prefix + req.Destination()

	var (
		n   int64
		err error
	)
	switch req.Op() {
	case domzset.Union:
		n, err = r.store.ZUnionStore(ctx, dest, opts)
	case domzset.Inter:
		n, err = r.store.ZInterStore(ctx, dest, opts)
	default:
		return 0, fmt.Errorf("%w: unsupported op %q", domain.ErrInvalidRequest, req.Op())
	}
	if err != nil {
		return 0, fmt.Errorf("%s store: %w", req.Op(), mapError(err))
	}
	return n, nil
}

// Combine runs ZUNION/ZINTER and returns the resulting members.
func (r *Repo) Combine(ctx context.Context, req *combine.Request) ([]domzset.Member, error) {
	opts := req.Options(r.prefix)

	var (
		members []domzset.Member
		err     error
	)
	switch req.Op() {
	case domzset.Union:
		members, err = r.store.ZUnion(ctx, opts, req.WithScoresRequested())
	case domzset.Inter:
		members, err = r.store.ZInter(ctx, opts, req.WithScoresRequested())
	default:
		return nil, fmt.Errorf("%w: unsupported op %q", domain.ErrInvalidRequest, req.Op())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Op(), mapError(err))
	}
	return members, nil
}

// mapError translates db sentinels into domain errors, keeping the cause.
func mapError(err error) error {
	switch {
	case errors.Is(err, db.ErrWrongType):
		return fmt.Errorf("%w: %w", domain.ErrWrongType, err)
	case errors.Is(err, db.ErrNoPermission):
		return fmt.Errorf("%w: %w", domain.ErrForbidden, err)
	case errors.Is(err, db.ErrClosed), errors.Is(err, db.ErrAuth):
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	case errors.Is(err, db.ErrKeyNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return err
}
