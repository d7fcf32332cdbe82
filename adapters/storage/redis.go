package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/ports"
)

// RedisStore is a Redis implementation of the GrantStore and PayloadStore
// interfaces. Grants live in a set per record, payloads in plain keys.
// Neither expires: grants are append-only and payloads live as long as the
// record does.
type RedisStore struct {
	client        *redis.Client
	grantPrefix   string
	payloadPrefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:        client,
		grantPrefix:   "healthmarket:grants:",
		payloadPrefix: "healthmarket:payload:",
	}
}

// Grant adds the grantee to the record's access set.
func (s *RedisStore) Grant(ctx context.Context, grant *core.AccessGrant) error {
	if err := s.client.SAdd(ctx, s.grantPrefix+grant.DataHash, grant.Grantee.String()).Err(); err != nil {
		return fmt.Errorf("failed to store grant: %w", err)
	}
	return nil
}

// HasGrant checks membership in the record's access set.
func (s *RedisStore) HasGrant(ctx context.Context, dataHash string, grantee core.Identity) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.grantPrefix+dataHash, grantee.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}
	return ok, nil
}

// Put stores a sealed payload under its content hash.
func (s *RedisStore) Put(ctx context.Context, dataHash string, sealed []byte) error {
	if err := s.client.Set(ctx, s.payloadPrefix+dataHash, sealed, 0).Err(); err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}
	return nil
}

// Get returns the sealed payload for a content hash.
func (s *RedisStore) Get(ctx context.Context, dataHash string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.payloadPrefix+dataHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return val, nil
}

var (
	_ ports.GrantStore   = (*RedisStore)(nil)
	_ ports.PayloadStore = (*RedisStore)(nil)
)
