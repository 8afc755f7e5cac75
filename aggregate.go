package zagg

import (
	"fmt"

	"github.com/kailas-cloud/zagg/internal/domain"
	"github.com/kailas-cloud/zagg/internal/domain/aggregate"
	"github.com/kailas-cloud/zagg/internal/domain/zset"
)

// Encoder types re-exported from the domain layer.
type (
	// Token is the element type of an encoded argument sequence:
	// string for text commands, []byte for binary-safe commands.
	Token = aggregate.Token
	// Policy selects how scores of the same member are combined.
	Policy = aggregate.Policy
	// WeightedKey pairs a source key with its score multiplier.
	WeightedKey[T Token] = aggregate.WeightedKey[T]
	// KeySet is the ordered list of source keys, optionally weighted.
	KeySet[T Token] = aggregate.KeySet[T]
	// Options is a KeySet plus an optional aggregation policy.
	Options[T Token] = aggregate.Options[T]
	// TextOptions encodes to string tokens.
	TextOptions = aggregate.TextOptions
	// BinaryOptions encodes to []byte tokens.
	BinaryOptions = aggregate.BinaryOptions
	// Member is a sorted set entry.
	Member = zset.Member
)

// Aggregation policies.
const (
	Sum = aggregate.Sum
	Min = aggregate.Min
	Max = aggregate.Max
)

// Keys builds an unweighted key set.
func Keys[T Token](keys ...T) KeySet[T] {
	return aggregate.Keys(keys...)
}

// Weighted builds a weighted key set from (key, weight) pairs.
func Weighted[T Token](pairs ...WeightedKey[T]) KeySet[T] {
	return aggregate.Weighted(pairs...)
}

// WeightedKeys builds a weighted key set from parallel slices.
// It fails when the slices differ in length.
func WeightedKeys[T Token](keys []T, weights []float64) (KeySet[T], error) {
	if len(keys) != len(weights) {
		return KeySet[T]{}, fmt.Errorf("%w: %d keys but %d weights",
			domain.ErrInvalidRequest, len(keys), len(weights))
	}
	pairs := make([]WeightedKey[T], len(keys))
	for i := range keys {
		pairs[i] = WeightedKey[T]{Key: keys[i], Weight: weights[i]}
	}
	return aggregate.Weighted(pairs...), nil
}

// NewOptions wraps a key set with no explicit aggregation policy.
func NewOptions[T Token](keys KeySet[T]) Options[T] {
	return aggregate.NewOptions(keys)
}

// ParsePolicy resolves "sum", "min" or "max" case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	p, err := aggregate.ParsePolicy(s)
	if err != nil {
		return p, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return p, nil
}
