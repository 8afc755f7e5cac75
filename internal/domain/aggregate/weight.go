package aggregate

import (
	"math"
	"strconv"
	"strings"
)

// FormatWeight renders a weight as the shortest decimal that round-trips.
// Integral values keep a trailing ".0" and exponent notation is never used.
func FormatWeight(w float64) string {
	switch {
	case math.IsInf(w, 1):
		return "+inf"
	case math.IsInf(w, -1):
		return "-inf"
	case math.IsNaN(w):
		return "nan"
	}
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
