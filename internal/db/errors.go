package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound  = errors.New("db: key not found")
	ErrClosed       = errors.New("db: client is closed")
	ErrAuth         = errors.New("db: authentication failed")
	ErrNoPermission = errors.New("db: no permission")
	ErrWrongType    = errors.New("db: wrong type")
	ErrEmptyCommand = errors.New("db: empty command")
)

// Op constants map to Valkey/Redis command names for error context.
const (
	OpZAdd        = "ZADD"
	OpZRange      = "ZRANGE"
	OpZUnionStore = "ZUNIONSTORE"
	OpZInterStore = "ZINTERSTORE"
	OpZUnion      = "ZUNION"
	OpZInter      = "ZINTER"
	OpDel         = "DEL"
	OpGet         = "GET"
	OpSet         = "SET"
	OpClientInfo  = "CLIENT INFO"
	OpExec        = "EXEC"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
