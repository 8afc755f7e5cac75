package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/zagg/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Default CLIENT SETINFO attributes.
const (
	DefaultLibName    = "zagg"
	DefaultLibVersion = "unknown"
)

// Config holds connection parameters for a Valkey/Redis store.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	ClientName string
	LibName    string
	LibVersion string
	// Standalone disables cluster topology discovery.
	Standalone bool
	DB         int
}

// Store implements db.Store via rueidis. Cluster mode is detected from the
// first reachable address unless Standalone is set.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Valkey or Redis via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(clientOption(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", classify("CONNECT", err))
	}

	return &Store{client: client}, nil
}

func clientOption(cfg Config) rueidis.ClientOption {
	libName, libVer := cfg.LibName, cfg.LibVersion
	if libName == "" {
		libName = DefaultLibName
	}
	if libVer == "" {
		libVer = DefaultLibVersion
	}
	return rueidis.ClientOption{
		InitAddress:       cfg.Addrs,
		Username:          cfg.Username,
		Password:          cfg.Password,
		ClientName:        cfg.ClientName,
		ClientSetInfo:     []string{libName, libVer},
		SelectDB:          cfg.DB,
		ForceSingleClient: cfg.Standalone,
		DisableCache:      true,
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", classify("PING", err))
	}
	return nil
}

// Close shuts down the client. Commands issued afterwards fail with db.ErrClosed.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// classify wraps err in a db.Error, tagging well-known server replies with
// the matching db sentinel.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, rueidis.ErrClosing) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrClosed, err)}
	}

	msg := err.Error()
	var re *rueidis.RedisError
	if errors.As(err, &re) {
		msg = re.Error()
	}

	switch {
	case containsIgnoreCase(msg, "noperm"):
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrNoPermission, err)}
	case containsIgnoreCase(msg, "noauth"), containsIgnoreCase(msg, "wrongpass"):
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrAuth, err)}
	case containsIgnoreCase(msg, "wrongtype"):
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrWrongType, err)}
	}
	return &db.Error{Op: op, Err: err}
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
