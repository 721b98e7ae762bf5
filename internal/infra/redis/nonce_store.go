package redis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"merchant-banklink/internal/banklink"
)

var _ banklink.NonceManager = (*NonceStore)(nil)

// NonceStore is a redis-backed NonceManager shared by every gateway
// instance. Issued nonces live under a TTL key; Consume deletes the key in a
// single DEL, which redis executes atomically, so two verification attempts
// racing on the same nonce cannot both succeed.
type NonceStore struct {
	cli RedisClient
	ttl time.Duration
}

func NewNonceStore(cli RedisClient, ttl time.Duration) *NonceStore {
	return &NonceStore{cli: cli, ttl: ttl}
}

func nonceKey(nonce string) string { return "banklink:nonce:" + nonce }

func (s *NonceStore) Issue(ctx context.Context) (string, error) {
	nonce := uuid.NewString()
	if err := s.cli.Set(ctx, nonceKey(nonce), "1", s.ttl); err != nil {
		return "", err
	}
	return nonce, nil
}

func (s *NonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	n, err := s.cli.Del(ctx, nonceKey(nonce))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
