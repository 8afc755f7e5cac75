package zagg

import (
	"github.com/kailas-cloud/zagg/internal/db"
	"github.com/kailas-cloud/zagg/internal/domain"
)

// Sentinel errors re-exported from the internal layers.
// Use errors.Is() to check.
var (
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrWrongType      = db.ErrWrongType
	ErrNoPermission   = db.ErrNoPermission
	ErrAuth           = db.ErrAuth
	ErrClosed         = db.ErrClosed
)
