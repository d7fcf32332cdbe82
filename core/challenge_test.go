package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeMessageRoundTrip(t *testing.T) {
	msg := ChallengeMessage("482913")
	assert.Equal(t, "Sign this message to authenticate with Health Data Platform\nNonce: 482913", msg)

	nonce, err := ParseNonce(msg)
	require.NoError(t, err)
	assert.Equal(t, "482913", nonce)
}

func TestParseNonceRejectsMalformedMessages(t *testing.T) {
	for _, msg := range []string{
		"",
		"Sign this message to authenticate with Health Data Platform",
		"Nonce: abc",
		"Nonce: 123 and then some trailing text",
	} {
		_, err := ParseNonce(msg)
		assert.True(t, errors.Is(err, ErrMalformedChallenge), "message %q", msg)
	}
}

func TestParseNonceAcceptsTrailingWhitespace(t *testing.T) {
	nonce, err := ParseNonce("preamble\nNonce: 007123\n")
	require.NoError(t, err)
	assert.Equal(t, "007123", nonce)
}

func TestIdentityComparisonIsCaseInsensitive(t *testing.T) {
	id := NormalizeIdentity("0xAbCdEf0123456789abcdef0123456789ABCDEF01")
	assert.True(t, id.Equals("0xabcdef0123456789abcdef0123456789abcdef01"))
	assert.True(t, id.Equals("0xABCDEF0123456789ABCDEF0123456789ABCDEF01"))
	assert.False(t, id.Equals("0xabcdef0123456789abcdef0123456789abcdef02"))
}

func TestRecordOwnership(t *testing.T) {
	rec := &DataRecord{Owner: NormalizeIdentity("0xAAA10000000000000000000000000000000000aa")}
	assert.True(t, rec.OwnedBy(NormalizeIdentity("0xaaa10000000000000000000000000000000000AA")))
	assert.False(t, rec.OwnedBy(NormalizeIdentity("0xbbb20000000000000000000000000000000000bb")))
}
