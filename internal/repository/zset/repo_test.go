package zset

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/kailas-cloud/zagg/internal/db"
	"github.com/kailas-cloud/zagg/internal/domain"
	"github.com/kailas-cloud/zagg/internal/domain/aggregate"
	"github.com/kailas-cloud/zagg/internal/domain/combine"
	domzset "github.com/kailas-cloud/zagg/internal/domain/zset"
)

func mustRequest(t *testing.T, op domzset.Op, sources []combine.Source, opts ...combine.Option) *combine.Request {
	t.Helper()
	req, err := combine.NewRequest(op, sources, opts...)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func w(v float64) *float64 { return &v }

func TestStore_UnionPrefixesKeys(t *testing.T) {
	repo, ms := newTestRepo(t, "app:")
	ms.zunionStoreFn = func(_ context.Context, dest string, opts aggregate.Options[string]) (int64, error) {
		if dest != "app:out" {
			t.Errorf("dest = %q", dest)
		}
		want := []string{"2", "app:a", "app:b", "WEIGHTS", "2.0", "0.5", "AGGREGATE", "MIN"}
		if got := opts.Args(); !reflect.DeepEqual(got, want) {
			t.Errorf("args = %q, want %q", got, want)
		}
		return 3, nil
	}

	req := mustRequest(t, domzset.Union,
		[]combine.Source{{Key: "a", Weight: w(2)}, {Key: "b", Weight: w(0.5)}},
		combine.WithDestination("out"), combine.WithAggregate(aggregate.Min))

	n, err := repo.Store(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
}

func TestStore_Inter(t *testing.T) {
	repo, ms := newTestRepo(t, "")
	called := false
	ms.zinterStoreFn = func(context.Context, string, aggregate.Options[string]) (int64, error) {
		called = true
		return 1, nil
	}

	req := mustRequest(t, domzset.Inter, []combine.Source{{Key: "a"}}, combine.WithDestination("d"))
	if _, err := repo.Store(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("ZInterStore was not called")
	}
}

func TestCombine_PassesWithScores(t *testing.T) {
	repo, ms := newTestRepo(t, "")
	ms.zunionFn = func(_ context.Context, opts aggregate.Options[string], withScores bool) ([]domzset.Member, error) {
		if !withScores {
			t.Error("withScores not passed")
		}
		if got := opts.Args(); !reflect.DeepEqual(got, []string{"3", "x", "y", "z"}) {
			t.Errorf("args = %q", got)
		}
		return []domzset.Member{{Name: "m", Score: 1}}, nil
	}

	req := mustRequest(t, domzset.Union,
		[]combine.Source{{Key: "x"}, {Key: "y"}, {Key: "z"}}, combine.WithScores())
	got, err := repo.Combine(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d members", len(got))
	}
}

func TestCombine_MapsErrors(t *testing.T) {
	tests := []struct {
		name  string
		dbErr error
		want  error
	}{
		{"wrong type", &db.Error{Op: db.OpZInter, Err: db.ErrWrongType}, domain.ErrWrongType},
		{"no permission", fmt.Errorf("x: %w", db.ErrNoPermission), domain.ErrForbidden},
		{"closed", db.ErrClosed, domain.ErrUnavailable},
		{"auth", db.ErrAuth, domain.ErrUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, ms := newTestRepo(t, "")
			ms.zinterFn = func(context.Context, aggregate.Options[string], bool) ([]domzset.Member, error) {
				return nil, tc.dbErr
			}
			req := mustRequest(t, domzset.Inter, []combine.Source{{Key: "a"}})
			_, err := repo.Combine(context.Background(), req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, tc.dbErr) {
				t.Errorf("cause lost: %v", err)
			}
		})
	}
}

func TestAddAndRange_Prefix(t *testing.T) {
	repo, ms := newTestRepo(t, "p:")
	ms.zaddFn = func(_ context.Context, key string, members []domzset.Member) (int64, error) {
		if key != "p:board" {
			t.Errorf("key = %q", key)
		}
		return int64(len(members)), nil
	}
	ms.zrangeFn = func(_ context.Context, key string, start, stop int64) ([]domzset.Member, error) {
		if key != "p:board" || start != 0 || stop != -1 {
			t.Errorf("range args = %q %d %d", key, start, stop)
		}
		return []domzset.Member{{Name: "a", Score: 1}}, nil
	}

	ctx := context.Background()
	if n, err := repo.Add(ctx, "board", []domzset.Member{{Name: "a", Score: 1}}); err != nil || n != 1 {
		t.Fatalf("Add = %d, %v", n, err)
	}
	got, err := repo.Range(ctx, "board", 0, -1)
	if err != nil || len(got) != 1 {
		t.Fatalf("Range = %v, %v", got, err)
	}
}
