package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artfolio/artfolio/modules/auth"
)

var _ auth.StateStore = (*StateStore)(nil)

// StateStore keeps one-time OAuth CSRF states in Redis. Expiry is handled
// by the key TTL, single use by the atomic GETDEL on consume.
type StateStore struct {
	client *redis.Client
	prefix string
}

// NewStateStore creates a Redis-backed state store.
func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client, prefix: "oauth:state:"}
}

func (s *StateStore) StoreState(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

func (s *StateStore) ConsumeState(ctx context.Context, state string) error {
	err := s.client.GetDel(ctx, s.prefix+state).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.ErrInvalidOAuthState
		}
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return nil
}
