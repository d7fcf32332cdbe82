package noncestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/ports"
)

// consumeScript compares the stored nonce and deletes the key in one step,
// so a concurrent Issue or Consume for the same identity cannot interleave.
var consumeScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
	return 0
end
local rec = cjson.decode(v)
if rec.nonce == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

type challengeRecord struct {
	Nonce    string    `json:"nonce"`
	IssuedAt time.Time `json:"issued_at"`
}

// RedisStore is a Redis implementation of the NonceStore interface, for
// deployments where challenge and verify may land on different instances.
// Key TTL enforces the max challenge age.
type RedisStore struct {
	client *redis.Client
	prefix string
	maxAge time.Duration
}

// NewRedisStore creates a new Redis nonce store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "healthmarket:nonce:",
		maxAge: DefaultMaxAge,
	}
}

// Issue generates a fresh nonce and overwrites any outstanding challenge.
func (s *RedisStore) Issue(ctx context.Context, identity core.Identity) (string, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(challengeRecord{Nonce: nonce, IssuedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("failed to encode challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+identity.String(), payload, s.maxAge).Err(); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}
	return nonce, nil
}

// Peek returns the outstanding challenge, or nil once the key has expired.
func (s *RedisStore) Peek(ctx context.Context, identity core.Identity) (*core.Challenge, error) {
	val, err := s.client.Get(ctx, s.prefix+identity.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read challenge: %w", err)
	}

	var rec challengeRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}

	return &core.Challenge{
		Identity: identity,
		Nonce:    rec.Nonce,
		IssuedAt: rec.IssuedAt,
	}, nil
}

// Consume atomically deletes the challenge when the nonce matches.
func (s *RedisStore) Consume(ctx context.Context, identity core.Identity, nonce string) (bool, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + identity.String()}, nonce).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", err)
	}
	return res == 1, nil
}

var _ ports.NonceStore = (*RedisStore)(nil)
