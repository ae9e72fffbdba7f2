package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"invitegate/pkg/domain"
	"invitegate/pkg/platform/sentinel"
)

// InMemoryStore keeps grants in a slice guarded by a mutex.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants []InviteGrant
	clock  Clock
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clock: time.Now}
}

func (s *InMemoryStore) FindExisting(_ context.Context, name domain.DomainName, owner domain.Address, chainID domain.ChainID) (*InviteGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g := s.findLocked(name, owner, chainID); g != nil {
		found := *g
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) findLocked(name domain.DomainName, owner domain.Address, chainID domain.ChainID) *InviteGrant {
	for i := range s.grants {
		g := &s.grants[i]
		if (g.Domain == name || g.Owner == owner) && g.ChainID == chainID {
			return g
		}
	}
	return nil
}

func (s *InMemoryStore) CountIssued(_ context.Context, chainID domain.ChainID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.grants {
		if g.ChainID == chainID {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) CountByChain(_ context.Context) ([]ChainCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.ChainID]int)
	for _, g := range s.grants {
		counts[g.ChainID]++
	}
	out := make([]ChainCount, 0, len(counts))
	for chain, n := range counts {
		out = append(out, ChainCount{ChainID: chain, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out, nil
}

func (s *InMemoryStore) Create(_ context.Context, grant InviteGrant) (*InviteGrant, error) {
	grant = prepare(grant, s.clock)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(grant.Domain, grant.Owner, grant.ChainID) != nil {
		return nil, fmt.Errorf("create grant for %s on chain %s: %w", grant.Domain, grant.ChainID, sentinel.ErrConflict)
	}
	s.grants = append(s.grants, grant)
	created := grant
	return &created, nil
}
