package banklink

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NonceManager issues one-time tokens and consumes each at most once. The
// issued/consumed set is the one piece of state shared across concurrent
// verification attempts, so Consume must be atomic: two racing consumers of
// the same nonce cannot both see true.
type NonceManager interface {
	Issue(ctx context.Context) (string, error)

	// Consume marks nonce used. True exactly once per issued nonce; false on
	// an unknown, expired or already-consumed nonce.
	Consume(ctx context.Context, nonce string) (bool, error)
}

var _ NonceManager = (*MemoryNonceStore)(nil)

// MemoryNonceStore is a process-local NonceManager for single-instance
// deployments and tests. Entries expire after ttl.
type MemoryNonceStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	expiry map[string]time.Time
}

func NewMemoryNonceStore(ttl time.Duration) *MemoryNonceStore {
	return &MemoryNonceStore{
		ttl:    ttl,
		now:    time.Now,
		expiry: make(map[string]time.Time),
	}
}

func (s *MemoryNonceStore) Issue(ctx context.Context) (string, error) {
	nonce := uuid.NewString()
	s.mu.Lock()
	s.expiry[nonce] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return nonce, nil
}

func (s *MemoryNonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expiry[nonce]
	if !ok {
		return false, nil
	}
	delete(s.expiry, nonce)
	if s.now().After(exp) {
		return false, nil
	}
	return true, nil
}
