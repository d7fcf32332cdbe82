// Package storage holds the off-ledger stores: access grants and sealed
// payloads, keyed by content hash.
package storage

import (
	"context"
	"sync"

	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/ports"
)

// MemoryStore is an in-memory implementation of the GrantStore and
// PayloadStore interfaces.
type MemoryStore struct {
	grants   map[string]map[core.Identity]core.AccessGrant
	payloads map[string][]byte
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		grants:   make(map[string]map[core.Identity]core.AccessGrant),
		payloads: make(map[string][]byte),
	}
}

// Grant records an access grant. Re-granting is a no-op.
func (s *MemoryStore) Grant(ctx context.Context, grant *core.AccessGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byGrantee, ok := s.grants[grant.DataHash]
	if !ok {
		byGrantee = make(map[core.Identity]core.AccessGrant)
		s.grants[grant.DataHash] = byGrantee
	}
	if _, exists := byGrantee[grant.Grantee]; !exists {
		byGrantee[grant.Grantee] = *grant
	}
	return nil
}

// HasGrant reports whether a grant exists for (dataHash, grantee).
func (s *MemoryStore) HasGrant(ctx context.Context, dataHash string, grantee core.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.grants[dataHash][grantee]
	return ok, nil
}

// Put stores a sealed payload under its content hash.
func (s *MemoryStore) Put(ctx context.Context, dataHash string, sealed []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payloads[dataHash] = append([]byte(nil), sealed...)
	return nil
}

// Get returns the sealed payload for a content hash.
func (s *MemoryStore) Get(ctx context.Context, dataHash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sealed, ok := s.payloads[dataHash]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	return append([]byte(nil), sealed...), nil
}

var (
	_ ports.GrantStore   = (*MemoryStore)(nil)
	_ ports.PayloadStore = (*MemoryStore)(nil)
)
