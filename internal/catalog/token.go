package catalog

import (
	"context"
	"sync/atomic"
	"time"
)

// TokenStore caches the catalog bearer credential. A redundant refresh is
// harmless, so implementations don't need to serialise writers.
type TokenStore interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// MemoryTokenStore keeps the credential in process memory.
type MemoryTokenStore struct {
	current atomic.Pointer[cachedToken]
	now     func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{now: time.Now}
}

func (s *MemoryTokenStore) Get(_ context.Context) (string, bool, error) {
	t := s.current.Load()
	if t == nil || !s.now().Before(t.expiresAt) {
		return "", false, nil
	}
	return t.value, true, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, token string, ttl time.Duration) error {
	s.current.Store(&cachedToken{value: token, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.current.Store(nil)
	return nil
}
