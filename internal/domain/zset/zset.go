package zset

// Member is a sorted set member with its score.
type Member struct {
	Name  string
	Score float64
}

// Op is the set combination performed across source keys.
type Op string

// Combination operations.
const (
	Union Op = "union"
	Inter Op = "inter"
)

// IsValid checks if the op is one of the supported values.
func (o Op) IsValid() bool {
	return o == Union || o == Inter
}
