package nonce

import (
	"context"
	"fmt"
	"sync"
	"time"

	"invitegate/pkg/platform/sentinel"
)

// InMemoryStore keeps consumed nonces in a map. Single process only.
type InMemoryStore struct {
	mu    sync.Mutex
	used  map[string]time.Time
	clock Clock
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithInMemoryClock overrides time.Now.
func WithInMemoryClock(clock Clock) InMemoryOption {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		used:  make(map[string]time.Time),
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *InMemoryStore) Issue(_ context.Context) (string, error) {
	return NewToken(), nil
}

func (s *InMemoryStore) Consume(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.used[token]; ok {
		return fmt.Errorf("consume nonce: %w", sentinel.ErrAlreadyUsed)
	}
	s.used[token] = s.clock()
	return nil
}

func (s *InMemoryStore) Sweep(_ context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.clock().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, usedAt := range s.used {
		if usedAt.Before(cutoff) {
			delete(s.used, token)
			removed++
		}
	}
	if removed > 0 {
		sweptTotal.WithLabelValues("memory").Add(float64(removed))
	}
	return removed, nil
}

// Len reports how many consumed records are held.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.used)
}
