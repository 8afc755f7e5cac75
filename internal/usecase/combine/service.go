package combine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/zagg/internal/domain"
	domcombine "github.com/kailas-cloud/zagg/internal/domain/combine"
	"github.com/kailas-cloud/zagg/internal/domain/zset"
	"github.com/kailas-cloud/zagg/internal/logger"
	"github.com/kailas-cloud/zagg/internal/metrics"
)

// Result is the outcome of a combine call. Stored is set for *STORE
// variants, Members otherwise.
type Result struct {
	Stored  int64
	Members []zset.Member
}

// Service runs sorted set aggregations and seeds/reads source sets.
type Service struct {
	repo Repository
}

// New creates a combine service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Combine executes a union or intersection, storing into the destination when set.
func (s *Service) Combine(ctx context.Context, req *domcombine.Request) (Result, error) {
	if req == nil {
		return Result{}, fmt.Errorf("%w: nil request", domain.ErrInvalidRequest)
	}

	op := string(req.Op())
	policy := "default"
	if p, ok := req.Aggregate(); ok {
		policy = p.String()
	}
	ctx = logger.With(ctx,
		zap.String("op", op),
		zap.String("aggregate", policy),
		zap.Int("sources", len(req.Sources())),
	)
	log := logger.FromContext(ctx)

	start := time.Now()
	var (
		res Result
		err error
	)
	if req.Stores() {
		res.Stored, err = s.repo.Store(ctx, req)
	} else {
		res.Members, err = s.repo.Combine(ctx, req)
	}
	duration := time.Since(start)

	metrics.AggregationDuration.WithLabelValues(op).Observe(duration.Seconds())
	metrics.AggregationSourceKeys.WithLabelValues(op).Observe(float64(len(req.Sources())))

	if err != nil {
		metrics.AggregationsTotal.WithLabelValues(op, policy, "error").Inc()
		log.Warn("aggregation failed", zap.Duration("duration", duration), zap.Error(err))
		return Result{}, fmt.Errorf("combine: %w", err)
	}

	metrics.AggregationsTotal.WithLabelValues(op, policy, "ok").Inc()
	log.Debug("aggregation done",
		zap.String("destination", req.Destination()),
		zap.Int64("stored", res.Stored),
		zap.Int("members", len(res.Members)),
		zap.Duration("duration", duration),
	)
	return res, nil
}

// Add upserts members into a sorted set.
func (s *Service) Add(ctx context.Context, key string, members []zset.Member) (int64, error) {
	if key == "" {
		return 0, fmt.Errorf("%w: key is required", domain.ErrInvalidRequest)
	}
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: at least one member is required", domain.ErrInvalidRequest)
	}
	for i, m := range members {
		if m.Name == "" {
			return 0, fmt.Errorf("%w: member %d: name is required", domain.ErrInvalidRequest, i)
		}
	}
	n, err := s.repo.Add(ctx, key, members)
	if err != nil {
		return 0, fmt.Errorf("add: %w", err)
	}
	return n, nil
}

// Range returns members by rank, inclusive on both ends.
func (s *Service) Range(ctx context.Context, key string, start, stop int64) ([]zset.Member, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidRequest)
	}
	members, err := s.repo.Range(ctx, key, start, stop)
	if err != nil {
		return nil, fmt.Errorf("range: %w", err)
	}
	return members, nil
}
