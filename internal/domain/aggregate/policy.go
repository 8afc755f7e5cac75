package aggregate

import (
	"fmt"
	"strconv"
	"strings"
)

// Policy selects how scores of the same member across sets are combined.
type Policy int

// Aggregation policies. Sum is the server default.
const (
	Sum Policy = iota
	Min
	Max
)

var policyNames = [...]string{
	Sum: "SUM",
	Min: "MIN",
	Max: "MAX",
}

// String returns the protocol label (SUM, MIN, MAX).
func (p Policy) String() string {
	if p.IsValid() {
		return policyNames[p]
	}
	return "Policy(" + strconv.Itoa(int(p)) + ")"
}

// IsValid checks if the policy is one of Sum, Min, Max.
func (p Policy) IsValid() bool {
	return p >= Sum && p <= Max
}

// ParsePolicy resolves a policy name case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return Policy(p), nil
		}
	}
	return 0, fmt.Errorf("unknown aggregate policy %q", s)
}

// PolicyArgs encodes the policy as: AGGREGATE <SUM|MIN|MAX>.
// p must satisfy IsValid; any other value panics rather than emit a
// token the server does not accept.
func PolicyArgs[T Token](p Policy) []T {
	if !p.IsValid() {
		panic("aggregate: invalid policy " + p.String())
	}
	return []T{word[T](KeywordAggregate), word[T](policyNames[p])}
}
