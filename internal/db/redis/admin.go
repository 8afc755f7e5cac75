package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/zagg/internal/db"
)

// Exec runs an arbitrary command on one node and returns its string reply.
func (s *Store) Exec(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", db.ErrEmptyCommand
	}
	cmd := s.b().Arbitrary(args...).Build()
	reply, err := s.do(ctx, cmd).ToString()
	if err != nil {
		return "", classify(args[0], err)
	}
	return reply, nil
}

// ExecAll runs an arbitrary command on every known node, e.g. CONFIG SET.
func (s *Store) ExecAll(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return db.ErrEmptyCommand
	}
	for addr, node := range s.client.Nodes() {
		cmd := node.B().Arbitrary(args...).Build()
		if err := node.Do(ctx, cmd).Error(); err != nil {
			return classify(args[0], fmt.Errorf("node %s: %w", addr, err))
		}
	}
	return nil
}

// ClientInfo returns the CLIENT INFO line of the serving connection.
func (s *Store) ClientInfo(ctx context.Context) (string, error) {
	cmd := s.b().Arbitrary("CLIENT", "INFO").Build()
	info, err := s.do(ctx, cmd).ToString()
	if err != nil {
		return "", classify(db.OpClientInfo, err)
	}
	return info, nil
}
