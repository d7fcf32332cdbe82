package seal

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte(`{"type":"heart_rate","value":72}`)

	sealed, err := Seal(key, plaintext)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(sealed, plaintext))

	opened, err := Open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpenRejectsTamperedBlob(t *testing.T) {
	key := testKey(t)
	sealed, err := Seal(key, []byte("secret"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = Open(key, sealed)
	assert.ErrorIs(t, err, ErrInvalidBlob)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealed, err := Seal(testKey(t), []byte("secret"))
	require.NoError(t, err)

	_, err = Open(testKey(t), sealed)
	assert.ErrorIs(t, err, ErrInvalidBlob)
}

func TestOpenRejectsShortBlob(t *testing.T) {
	_, err := Open(testKey(t), []byte{0x01})
	assert.ErrorIs(t, err, ErrInvalidBlob)
}

func TestSealRequiresFullSizeKey(t *testing.T) {
	_, err := Seal([]byte("short"), []byte("secret"))
	assert.Error(t, err)
}
