package clientauth_test

import (
	"testing"

	"github.com/goliatone/go-clientauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyRing(t *testing.T) {
	t.Run("creates ring with single active key", func(t *testing.T) {
		ring, err := clientauth.NewKeyRing([]byte("signing-secret"))
		require.NoError(t, err)

		current := ring.Current()
		assert.NotEmpty(t, current.Kid)
		assert.Equal(t, []byte("signing-secret"), current.Secret)
		assert.False(t, current.IsRetired())

		keys := ring.VerificationKeys()
		require.Len(t, keys, 1)
		assert.Equal(t, current.Kid, keys[0].Kid)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := clientauth.NewKeyRing(nil)
		assert.Error(t, err)
	})
}

func TestNewKeyRingFromConfig(t *testing.T) {
	t.Run("without previous key", func(t *testing.T) {
		cfg := newMockConfig()

		ring, err := clientauth.NewKeyRingFromConfig(cfg)
		require.NoError(t, err)
		assert.Len(t, ring.VerificationKeys(), 1)
		assert.Equal(t, []byte(cfg.signingKey), ring.Current().Secret)
	})

	t.Run("previous key lands in the grace slot", func(t *testing.T) {
		cfg := newMockConfig()
		cfg.previousSigningKey = "retired-signing-key"

		ring, err := clientauth.NewKeyRingFromConfig(cfg)
		require.NoError(t, err)

		keys := ring.VerificationKeys()
		require.Len(t, keys, 2)
		assert.Equal(t, []byte(cfg.signingKey), keys[0].Secret)
		assert.Equal(t, []byte("retired-signing-key"), keys[1].Secret)
		assert.True(t, keys[1].IsRetired())
	})

	t.Run("nil config rejected", func(t *testing.T) {
		_, err := clientauth.NewKeyRingFromConfig(nil)
		assert.Error(t, err)
	})
}

func TestKeyRingRotate(t *testing.T) {
	ring, err := clientauth.NewKeyRing([]byte("key-one"))
	require.NoError(t, err)
	firstKid := ring.Current().Kid

	require.NoError(t, ring.Rotate([]byte("key-two")))

	current := ring.Current()
	assert.NotEqual(t, firstKid, current.Kid)
	assert.Equal(t, []byte("key-two"), current.Secret)

	keys := ring.VerificationKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, current.Kid, keys[0].Kid)
	assert.Equal(t, firstKid, keys[1].Kid)
	assert.True(t, keys[1].IsRetired())

	retired, ok := ring.Lookup(firstKid)
	require.True(t, ok)
	assert.True(t, retired.IsRetired())

	// second rotation drops the first key entirely
	require.NoError(t, ring.Rotate([]byte("key-three")))
	_, ok = ring.Lookup(firstKid)
	assert.False(t, ok)
	assert.Len(t, ring.VerificationKeys(), 2)

	assert.Error(t, ring.Rotate(nil))
}
