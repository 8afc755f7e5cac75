package zset

import (
	"context"
	"testing"

	"github.com/kailas-cloud/zagg/internal/domain/aggregate"
	domzset "github.com/kailas-cloud/zagg/internal/domain/zset"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	zaddFn        func(ctx context.Context, key string, members []domzset.Member) (int64, error)
	zrangeFn      func(ctx context.Context, key string, start, stop int64) ([]domzset.Member, error)
	zunionStoreFn func(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error)
	zinterStoreFn func(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error)
	zunionFn      func(ctx context.Context, opts aggregate.Options[string], withScores bool) ([]domzset.Member, error)
	zinterFn      func(ctx context.Context, opts aggregate.Options[string], withScores bool) ([]domzset.Member, error)
}

func (m *mockStore) ZAdd(ctx context.Context, key string, members []domzset.Member) (int64, error) {
	if m.zaddFn != nil {
		return m.zaddFn(ctx, key, members)
	}
	return int64(len(members)), nil
}

func (m *mockStore) ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]domzset.Member, error) {
	if m.zrangeFn != nil {
		return m.zrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) ZUnionStore(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error) {
	if m.zunionStoreFn != nil {
		return m.zunionStoreFn(ctx, dest, opts)
	}
	return 0, nil
}

func (m *mockStore) ZInterStore(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error) {
	if m.zinterStoreFn != nil {
		return m.zinterStoreFn(ctx, dest, opts)
	}
	return 0, nil
}

func (m *mockStore) ZUnion(
	ctx context.Context, opts aggregate.Options[string], withScores bool,
) ([]domzset.Member, error) {
	if m.zunionFn != nil {
		return m.zunionFn(ctx, opts, withScores)
	}
	return nil, nil
}

func (m *mockStore) ZInter(
	ctx context.Context, opts aggregate.Options[string], withScores bool,
) ([]domzset.Member, error) {
	if m.zinterFn != nil {
		return m.zinterFn(ctx, opts, withScores)
	}
	return nil, nil
}

func newTestRepo(t *testing.T, prefix string) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, prefix), ms
}
