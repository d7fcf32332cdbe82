package noncestore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalis-labs/healthmarket/core"
)

const testIdentity = core.Identity("0xaaa10000000000000000000000000000000000aa")

func TestIssueGeneratesFixedWidthNumericNonce(t *testing.T) {
	s := NewMemoryStore()
	pattern := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 20; i++ {
		nonce, err := s.Issue(context.Background(), testIdentity)
		require.NoError(t, err)
		assert.Regexp(t, pattern, nonce)
	}
}

func TestIssueOverwritesOutstandingChallenge(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Issue(ctx, testIdentity)
	require.NoError(t, err)
	second, err := s.Issue(ctx, testIdentity)
	require.NoError(t, err)

	ch, err := s.Peek(ctx, testIdentity)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, second, ch.Nonce)

	// the first nonce is gone: consuming it fails and leaves the second intact
	if first != second {
		ok, err := s.Consume(ctx, testIdentity, first)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err := s.Consume(ctx, testIdentity, second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPeekReturnsNilWhenAbsent(t *testing.T) {
	s := NewMemoryStore()

	ch, err := s.Peek(context.Background(), testIdentity)
	require.NoError(t, err)
	assert.Nil(t, ch)
}

func TestConsumeDeletesExactlyOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	nonce, err := s.Issue(ctx, testIdentity)
	require.NoError(t, err)

	ok, err := s.Consume(ctx, testIdentity, nonce)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Consume(ctx, testIdentity, nonce)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeWrongNonceLeavesStateUntouched(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	nonce, err := s.Issue(ctx, testIdentity)
	require.NoError(t, err)

	ok, err := s.Consume(ctx, testIdentity, "000000")
	require.NoError(t, err)
	if nonce == "000000" {
		t.Skip("generated the probe nonce")
	}
	assert.False(t, ok)

	ch, err := s.Peek(ctx, testIdentity)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, nonce, ch.Nonce)
}

func TestStaleChallengeCountsAsAbsent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	nonce, err := s.Issue(ctx, testIdentity)
	require.NoError(t, err)

	// move the clock past the max challenge age
	s.now = func() time.Time { return time.Now().Add(DefaultMaxAge + time.Second) }

	ch, err := s.Peek(ctx, testIdentity)
	require.NoError(t, err)
	assert.Nil(t, ch)

	ok, err := s.Consume(ctx, testIdentity, nonce)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChallengesAreIndependentPerIdentity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	other := core.Identity("0xbbb20000000000000000000000000000000000bb")

	n1, err := s.Issue(ctx, testIdentity)
	require.NoError(t, err)
	_, err = s.Issue(ctx, other)
	require.NoError(t, err)

	ok, err := s.Consume(ctx, testIdentity, n1)
	require.NoError(t, err)
	assert.True(t, ok)

	ch, err := s.Peek(ctx, other)
	require.NoError(t, err)
	assert.NotNil(t, ch)
}
