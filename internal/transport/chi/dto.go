package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/zagg/internal/domain/zset"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeWrongType        ErrorCode = "wrong_type"
	ErrorCodeForbidden        ErrorCode = "forbidden"
	ErrorCodeUnavailable      ErrorCode = "unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Member is a sorted set entry. Score is omitted when scores were not requested.
type Member struct {
	Member string `json:"member"`
	Score  *Score `json:"score,omitempty"`
}

// Score is a sorted set score. Finite values are JSON numbers; infinities
// are the strings "+inf" and "-inf", the spelling the server itself uses.
type Score float64

var errNaNScore = errors.New("score is not a number")

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	switch {
	case math.IsNaN(f):
		return nil, errNaNScore
	case math.IsInf(f, 1):
		return []byte(`"+inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-inf"`), nil
	}
	return json.Marshal(f) //nolint:wrapcheck // plain float encoding
}

// UnmarshalJSON accepts a JSON number or one of "+inf", "-inf", "inf".
func (s *Score) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("score: %w", err)
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || !math.IsInf(f, 0) {
			return fmt.Errorf("score: want a number, \"+inf\" or \"-inf\", got %q", raw)
		}
		*s = Score(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	*s = Score(f)
	return nil
}

// AddMembersRequest is the body of POST /v1/sets/{key}.
type AddMembersRequest struct {
	Members []Member `json:"members"`
}

// AddMembersResponse reports how many members were newly added.
type AddMembersResponse struct {
	Key   string `json:"key"`
	Added int64  `json:"added"`
}

// MembersResponse lists sorted set members.
type MembersResponse struct {
	Members []Member `json:"members"`
}

// Source is one input set of an aggregation.
type Source struct {
	Key    string   `json:"key"`
	Weight *float64 `json:"weight,omitempty"`
}

// CombineRequest is the body of POST /v1/union and POST /v1/inter.
type CombineRequest struct {
	Sources     []Source `json:"sources"`
	Aggregate   string   `json:"aggregate,omitempty"`
	Destination string   `json:"destination,omitempty"`
	WithScores  bool     `json:"with_scores,omitempty"`
}

// CombineResponse carries either the stored cardinality or the result members.
type CombineResponse struct {
	Destination string    `json:"destination,omitempty"`
	Stored      *int64    `json:"stored,omitempty"`
	Members     *[]Member `json:"members,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	DBLatencyMs float64           `json:"db_latency_ms"`
}

func membersToDTO(members []zset.Member, withScores bool) []Member {
	out := make([]Member, len(members))
	for i, m := range members {
		out[i] = Member{Member: m.Name}
		if withScores {
			score := Score(m.Score)
			out[i].Score = &score
		}
	}
	return out
}
