package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/internal/eth"
	"github.com/vitalis-labs/healthmarket/ports"
)

// DefaultSessionTTL is the session credential lifetime. Sessions are never
// refreshed; re-authentication repeats the full challenge flow.
const DefaultSessionTTL = 24 * time.Hour

// AuthService handles the wallet challenge/response flow: issuing
// challenges, verifying signed ones, and validating session credentials.
type AuthService struct {
	nonces     ports.NonceStore
	tokenizer  ports.Tokenizer
	sessionTTL time.Duration
	logger     *zap.Logger

	now func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(nonces ports.NonceStore, tokenizer ports.Tokenizer, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		nonces:     nonces,
		tokenizer:  tokenizer,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateChallenge issues a fresh challenge for the address and returns the
// message the wallet must sign. Any prior outstanding challenge for the same
// identity is replaced.
func (s *AuthService) CreateChallenge(ctx context.Context, address string) (string, error) {
	if !eth.ValidAddress(address) {
		return "", fmt.Errorf("wallet address %q: %w", address, core.ErrInvalidIdentity)
	}

	identity := core.NormalizeIdentity(address)
	nonce, err := s.nonces.Issue(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("issuing nonce: %v: %w", err, core.ErrInternal)
	}

	s.logger.Info("challenge issued", zap.String("address", identity.String()))
	return core.ChallengeMessage(nonce), nil
}

// VerifyAndIssue validates a signed challenge and mints a session credential.
//
// The gates run in a fixed order: input presence, message format, nonce
// match, signature recovery, nonce consumption. Nonce validity is checked
// before the signature so stale or replayed challenges are rejected cheaply,
// and the nonce is consumed only after the signature verifies, so a wrong
// signature leaves the challenge valid for a correct retry.
func (s *AuthService) VerifyAndIssue(ctx context.Context, address, message, signature string) (string, error) {
	if address == "" || message == "" || signature == "" || !eth.ValidAddress(address) {
		return "", fmt.Errorf("address, message and signature are required: %w", core.ErrMissingInput)
	}
	identity := core.NormalizeIdentity(address)

	nonce, err := core.ParseNonce(message)
	if err != nil {
		return "", err
	}

	challenge, err := s.nonces.Peek(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("reading challenge: %v: %w", err, core.ErrInternal)
	}
	if challenge == nil || challenge.Nonce != nonce {
		return "", fmt.Errorf("no outstanding challenge matches: %w", core.ErrNonceMismatch)
	}

	sig, err := eth.DecodeSignature(signature)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, core.ErrSignatureMismatch)
	}
	recovered, err := eth.RecoverIdentity(message, sig)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, core.ErrSignatureMismatch)
	}
	if recovered != identity {
		s.logger.Info("signature mismatch",
			zap.String("claimed", identity.String()),
			zap.String("recovered", recovered.String()),
		)
		return "", fmt.Errorf("recovered address does not match: %w", core.ErrSignatureMismatch)
	}

	consumed, err := s.nonces.Consume(ctx, identity, nonce)
	if err != nil {
		return "", fmt.Errorf("consuming nonce: %v: %w", err, core.ErrInternal)
	}
	if !consumed {
		// Peek saw the nonce an instant ago; losing it here means a
		// concurrent verify or re-issue won the race.
		s.logger.Error("nonce vanished between peek and consume",
			zap.String("address", identity.String()),
			zap.String("nonce", nonce),
		)
		return "", fmt.Errorf("challenge consumed concurrently: %w", core.ErrInternal)
	}

	now := s.now()
	token, err := s.tokenizer.Mint(&core.Session{
		Identity:  identity,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if err != nil {
		return "", fmt.Errorf("minting session token: %v: %w", err, core.ErrInternal)
	}

	s.logger.Info("session issued", zap.String("address", identity.String()))
	return token, nil
}

// Authenticate validates a presented session credential and returns the
// identity it carries. Purely stateless; the nonce store is not touched.
func (s *AuthService) Authenticate(ctx context.Context, token string) (core.Identity, error) {
	if token == "" {
		return "", core.ErrMissingCredential
	}

	session, err := s.tokenizer.Verify(token)
	if err != nil {
		return "", core.ErrInvalidCredential
	}
	return session.Identity, nil
}
