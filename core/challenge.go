package core

import (
	"fmt"
	"regexp"
	"time"
)

// ChallengePreamble is the first line of every challenge message. Clients
// must sign the rendered message byte-for-byte, so the template never changes.
const ChallengePreamble = "Sign this message to authenticate with Health Data Platform"

// NonceDigits is the fixed width of a challenge nonce.
const NonceDigits = 6

var noncePattern = regexp.MustCompile(`Nonce: (\d+)\s*$`)

// Challenge is the single outstanding authentication challenge for an
// identity. It lives only inside a NonceStore; callers see the rendered
// message, never the record.
type Challenge struct {
	Identity Identity
	Nonce    string
	IssuedAt time.Time
}

// ChallengeMessage renders the canonical message for a nonce.
func ChallengeMessage(nonce string) string {
	return fmt.Sprintf("%s\nNonce: %s", ChallengePreamble, nonce)
}

// ParseNonce extracts the trailing nonce token from a signed challenge
// message. Returns ErrMalformedChallenge when the message does not end with
// a "Nonce: <digits>" line.
func ParseNonce(message string) (string, error) {
	m := noncePattern.FindStringSubmatch(message)
	if m == nil {
		return "", fmt.Errorf("message must contain 'Nonce: NUMBER': %w", ErrMalformedChallenge)
	}
	return m[1], nil
}

// Session represents an authenticated session. It is carried entirely inside
// the signed credential; the server keeps no session table.
type Session struct {
	Identity  Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}
