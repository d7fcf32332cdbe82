package core

import "errors"

var (
	// ErrInvalidIdentity means the supplied address is not a well-formed
	// account address.
	ErrInvalidIdentity = errors.New("invalid account address")

	// ErrMissingInput means a required field was absent or unusable.
	ErrMissingInput = errors.New("missing or invalid input")

	// ErrMalformedChallenge means the signed message does not carry a
	// parseable nonce token.
	ErrMalformedChallenge = errors.New("malformed challenge message")

	// ErrNonceMismatch means no outstanding challenge matches the supplied
	// nonce. Covers never-issued, stale, and already-consumed challenges.
	ErrNonceMismatch = errors.New("nonce is invalid or expired")

	// ErrSignatureMismatch means the recovered signer is not the claimed
	// identity, or recovery failed outright.
	ErrSignatureMismatch = errors.New("signature does not match address")

	// ErrInvalidSignature means the signature bytes are malformed or
	// cryptographic recovery failed.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMissingCredential means no session credential was presented.
	ErrMissingCredential = errors.New("access token required")

	// ErrInvalidCredential means the presented credential failed its
	// integrity check or has expired.
	ErrInvalidCredential = errors.New("invalid or expired token")

	// ErrAccessDenied means the requester is not permitted to perform the
	// operation on the record.
	ErrAccessDenied = errors.New("access denied")

	// ErrRecordNotFound means the registry has never assigned the requested
	// id, or the record is deliberately hidden from the requester.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRegistryUnavailable means a ledger call failed or timed out.
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrInternal marks an invariant violation. Logged with full context,
	// surfaced to callers as a generic failure.
	ErrInternal = errors.New("internal error")
)
