package aggregate

import (
	"slices"
	"strconv"
)

// WeightedKey pairs a sorted set key with the multiplier applied to its scores.
type WeightedKey[T Token] struct {
	Key    T
	Weight float64
}

// KeySet is the ordered list of source keys for an aggregation.
// It holds either plain keys or weighted keys, never both.
// The zero value is an empty unweighted set.
type KeySet[T Token] struct {
	keys     []T
	weighted []WeightedKey[T]
	hasW     bool
}

// Keys builds an unweighted key set. Order is preserved and the slice is
// copied, so later changes to keys do not affect the set.
func Keys[T Token](keys ...T) KeySet[T] {
	return KeySet[T]{keys: slices.Clone(keys)}
}

// Weighted builds a weighted key set. Order is preserved and pairs is copied.
func Weighted[T Token](pairs ...WeightedKey[T]) KeySet[T] {
	return KeySet[T]{weighted: slices.Clone(pairs), hasW: true}
}

// IsWeighted reports whether the set carries weights.
func (ks KeySet[T]) IsWeighted() bool { return ks.hasW }

// Len returns the number of source keys.
func (ks KeySet[T]) Len() int {
	if ks.hasW {
		return len(ks.weighted)
	}
	return len(ks.keys)
}

// KeyNames returns the source keys in order, without weights.
func (ks KeySet[T]) KeyNames() []T {
	if !ks.hasW {
		out := make([]T, len(ks.keys))
		copy(out, ks.keys)
		return out
	}
	out := make([]T, len(ks.weighted))
	for i, wk := range ks.weighted {
		out[i] = wk.Key
	}
	return out
}

// Weights returns the weights in key order, or nil for an unweighted set.
func (ks KeySet[T]) Weights() []float64 {
	if !ks.hasW {
		return nil
	}
	out := make([]float64, len(ks.weighted))
	for i, wk := range ks.weighted {
		out[i] = wk.Weight
	}
	return out
}

// Args encodes the set as: numkeys key [key ...] [WEIGHTS weight [weight ...]].
// An empty set encodes as a zero count and is left for the server to reject.
func (ks KeySet[T]) Args() []T {
	n := ks.Len()
	size := 1 + n
	if ks.hasW {
		size += 1 + n
	}

	args := make([]T, 0, size)
	args = append(args, word[T](strconv.Itoa(n)))
	args = append(args, ks.KeyNames()...)
	if !ks.hasW {
		return args
	}

	args = append(args, word[T](KeywordWeights))
	for _, wk := range ks.weighted {
		args = append(args, word[T](FormatWeight(wk.Weight)))
	}
	return args
}
