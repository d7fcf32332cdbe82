// Package eth wraps the go-ethereum primitives used for wallet
// authentication: address validation and personal-sign signature recovery.
package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vitalis-labs/healthmarket/core"
)

// SignatureLength is the expected length of an ECDSA signature in bytes
// (r || s || v).
const SignatureLength = 65

// ValidAddress reports whether s is a syntactically well-formed hex address.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// DecodeSignature parses a 0x-prefixed hex signature into bytes.
func DecodeSignature(s string) ([]byte, error) {
	sig, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", core.ErrInvalidSignature)
	}
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes: %w", SignatureLength, core.ErrInvalidSignature)
	}
	return sig, nil
}

// RecoverIdentity recovers the signer of a personal-sign (EIP-191) message.
// It always returns some identity when recovery succeeds mathematically;
// deciding whether that identity is the right one is the caller's job.
func RecoverIdentity(message string, signature []byte) (core.Identity, error) {
	if len(signature) != SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes: %w", SignatureLength, core.ErrInvalidSignature)
	}

	// Wallets produce V as 27/28, crypto.SigToPub expects 0/1.
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] != 0 && sig[64] != 1 {
		return "", fmt.Errorf("invalid recovery id %d: %w", signature[64], core.ErrInvalidSignature)
	}

	digest := accounts.TextHash([]byte(message))
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return "", fmt.Errorf("signature recovery failed: %w", core.ErrInvalidSignature)
	}

	return core.NormalizeIdentity(crypto.PubkeyToAddress(*pub).Hex()), nil
}
