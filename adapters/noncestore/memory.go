package noncestore

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/ports"
)

// DefaultMaxAge is how long an unconsumed challenge stays valid. The
// reference flow never expires nonces; this is a hardening bound.
const DefaultMaxAge = 10 * time.Minute

var nonceSpace = big.NewInt(1_000_000)

// MemoryStore is an in-memory implementation of the NonceStore interface.
// A single mutex guards the map; contention is per-process and low, since
// each entry is touched at most twice per login.
type MemoryStore struct {
	challenges map[core.Identity]core.Challenge
	maxAge     time.Duration
	mu         sync.Mutex

	now func() time.Time
}

// NewMemoryStore creates a new in-memory nonce store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[core.Identity]core.Challenge),
		maxAge:     DefaultMaxAge,
		now:        time.Now,
	}
}

// Issue generates a fresh nonce for the identity, replacing any outstanding
// challenge.
func (s *MemoryStore) Issue(ctx context.Context, identity core.Identity) (string, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[identity] = core.Challenge{
		Identity: identity,
		Nonce:    nonce,
		IssuedAt: s.now(),
	}
	return nonce, nil
}

// Peek returns the outstanding challenge for the identity, or nil when none
// exists. A challenge past the max age counts as absent and is dropped.
func (s *MemoryStore) Peek(ctx context.Context, identity core.Identity) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[identity]
	if !ok {
		return nil, nil
	}
	if s.now().Sub(ch.IssuedAt) > s.maxAge {
		delete(s.challenges, identity)
		return nil, nil
	}
	cpy := ch
	return &cpy, nil
}

// Consume deletes the challenge if its nonce matches. The compare and the
// delete happen under one lock, so a concurrent Issue cannot slip between.
func (s *MemoryStore) Consume(ctx context.Context, identity core.Identity, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[identity]
	if !ok || ch.Nonce != nonce {
		return false, nil
	}
	if s.now().Sub(ch.IssuedAt) > s.maxAge {
		delete(s.challenges, identity)
		return false, nil
	}
	delete(s.challenges, identity)
	return true, nil
}

// GenerateNonce produces a fixed-width random numeric nonce.
func GenerateNonce() (string, error) {
	n, err := rand.Int(rand.Reader, nonceSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return fmt.Sprintf("%0*d", core.NonceDigits, n), nil
}

var _ ports.NonceStore = (*MemoryStore)(nil)
