package combine

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/zagg/internal/domain"
	"github.com/kailas-cloud/zagg/internal/domain/aggregate"
	"github.com/kailas-cloud/zagg/internal/domain/zset"
)

var (
	// ErrNoSources signals a request with no source keys.
	ErrNoSources = errors.New("at least one source key is required")
	// ErrMixedWeights signals that only some sources carry a weight.
	ErrMixedWeights = errors.New("either all sources have weights or none")
	// ErrStoreWithScores signals WITHSCORES combined with a destination key.
	ErrStoreWithScores = errors.New("with_scores cannot be used with a destination")
)

// Source is one input sorted set. Weight is nil for the server default of 1.
type Source struct {
	Key    string
	Weight *float64
}

// Request describes a ZUNION/ZINTER call, optionally storing into a destination.
type Request struct {
	op          zset.Op
	sources     []Source
	destination string
	aggregate   aggregate.Policy
	hasAgg      bool
	withScores  bool
}

// Option configures optional request fields.
type Option func(*Request)

// WithDestination stores the result under dest (ZUNIONSTORE / ZINTERSTORE).
func WithDestination(dest string) Option {
	return func(r *Request) { r.destination = dest }
}

// WithAggregate sends an explicit AGGREGATE policy.
func WithAggregate(p aggregate.Policy) Option {
	return func(r *Request) {
		r.aggregate = p
		r.hasAgg = true
	}
}

// WithScores requests member scores in the reply.
func WithScores() Option {
	return func(r *Request) { r.withScores = true }
}

// NewRequest builds and validates a combine request.
func NewRequest(op zset.Op, sources []Source, opts ...Option) (*Request, error) {
	r := &Request{op: op, sources: sources}
	for _, o := range opts {
		o(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return r, nil
}

func (r *Request) validate() error {
	if !r.op.IsValid() {
		return fmt.Errorf("unsupported op %q", r.op)
	}
	if len(r.sources) == 0 {
		return ErrNoSources
	}
	weighted := 0
	for i, s := range r.sources {
		if s.Key == "" {
			return fmt.Errorf("source %d: key is required", i)
		}
		if s.Weight != nil {
			weighted++
		}
	}
	if weighted != 0 && weighted != len(r.sources) {
		return ErrMixedWeights
	}
	if r.hasAgg && !r.aggregate.IsValid() {
		return fmt.Errorf("unsupported aggregate %v", r.aggregate)
	}
	if r.destination != "" && r.withScores {
		return ErrStoreWithScores
	}
	return nil
}

// Op returns the combination operation.
func (r *Request) Op() zset.Op { return r.op }

// Sources returns the source sets in order.
func (r *Request) Sources() []Source { return r.sources }

// Destination returns the target key, or "" for a read-only combine.
func (r *Request) Destination() string { return r.destination }

// Stores reports whether the result is written to a destination key.
func (r *Request) Stores() bool { return r.destination != "" }

// WithScoresRequested reports whether scores are returned.
func (r *Request) WithScoresRequested() bool { return r.withScores }

// Aggregate returns the explicit policy, if any.
func (r *Request) Aggregate() (aggregate.Policy, bool) { return r.aggregate, r.hasAgg }

// Options converts the request into the protocol argument block.
// prefix is prepended to every source key.
func (r *Request) Options(prefix string) aggregate.Options[string] {
	var ks aggregate.KeySet[string]
	if len(r.sources) > 0 && r.sources[0].Weight != nil {
		pairs := make([]aggregate.WeightedKey[string], len(r.sources))
		for i, s := range r.sources {
			pairs[i] = aggregate.WeightedKey[string]{Key: prefix + s.Key, Weight: *s.Weight}
		}
		ks = aggregate.Weighted(pairs...)
	} else {
		keys := make([]string, len(r.sources))
		for i, s := range r.sources {
			keys[i] = prefix + s.Key
		}
		ks = aggregate.Keys(keys...)
	}

	opts := aggregate.NewOptions(ks)
	if r.hasAgg {
		opts = opts.WithAggregate(r.aggregate)
	}
	return opts
}
