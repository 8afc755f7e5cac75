// Package aggregate encodes the WEIGHTS / AGGREGATE argument block shared by
// ZUNION, ZINTER, ZUNIONSTORE and ZINTERSTORE.
//
// Every encoder is written once over Token and instantiated twice: with
// string for text tokens and with []byte for binary-safe tokens.
package aggregate

// Protocol keywords.
const (
	KeywordWeights   = "WEIGHTS"
	KeywordAggregate = "AGGREGATE"
)

// Token is a single command argument, either text or raw bytes.
type Token interface {
	~string | ~[]byte
}

// word converts protocol text (counts, keywords, weights) into a token.
// Both representations go through this single conversion.
func word[T Token](s string) T {
	return T(s)
}

// Text renders tokens as strings. Bytes are copied unchanged.
func Text[T Token](tokens []T) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}

// Binary renders tokens as byte slices.
func Binary[T Token](tokens []T) [][]byte {
	out := make([][]byte, len(tokens))
	for i, t := range tokens {
		out[i] = []byte(t)
	}
	return out
}
