// Package config collects the environment-level configuration the service
// consumes.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vitalis-labs/healthmarket/internal/seal"
)

// Config holds everything read from the environment at startup.
type Config struct {
	// HTTPAddr is the listen address, default ":8080".
	HTTPAddr string

	// JWTSecret signs session credentials. Required; shared across
	// instances for horizontal scaling.
	JWTSecret []byte

	// SessionTTL is the session credential lifetime, default 24h.
	SessionTTL time.Duration

	// RedisURL enables the Redis-backed nonce and grant stores when set.
	RedisURL string

	// EthRPCURL and ContractAddress point at the on-chain registry. When
	// either is empty the service runs against the in-memory registry.
	EthRPCURL       string
	ContractAddress string

	// OperatorKey is the hex-encoded private key used to sign registry
	// transactions. Required when the on-chain registry is configured.
	OperatorKey string

	// SealKey is the 32-byte hex-encoded key sealing private payloads.
	SealKey []byte
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		RedisURL:        os.Getenv("REDIS_URL"),
		EthRPCURL:       os.Getenv("ETH_RPC_URL"),
		ContractAddress: os.Getenv("CONTRACT_ADDRESS"),
		OperatorKey:     os.Getenv("OPERATOR_KEY"),
		SessionTTL:      24 * time.Hour,
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	cfg.JWTSecret = []byte(secret)

	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}

	if k := os.Getenv("SEAL_KEY"); k != "" {
		key, err := hex.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("invalid SEAL_KEY: %w", err)
		}
		if len(key) != seal.KeySize {
			return nil, fmt.Errorf("SEAL_KEY must be %d bytes, got %d", seal.KeySize, len(key))
		}
		cfg.SealKey = key
	}

	if cfg.EthRPCURL != "" && cfg.ContractAddress != "" && cfg.OperatorKey == "" {
		return nil, errors.New("OPERATOR_KEY is required when the on-chain registry is configured")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
