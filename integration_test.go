package clientauth_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-clientauth"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("full-stack flow with production bcrypt cost")
	}

	ctx := context.Background()

	db := setupCredentialsDB(t)
	manager := clientauth.NewRepositoryManager(db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	publisher := clientauth.NewRedisStreamPublisher(redisClient, "")

	handler := clientauth.NewCreateCredentialHandler(manager)
	require.NoError(t, handler.Execute(ctx, clientauth.CreateCredentialMessage{
		ClientID:  "123456",
		Secret:    "secret123",
		Active:    true,
		UseHashid: true,
	}))

	ring, err := clientauth.NewKeyRing([]byte("integration-signing-key"))
	require.NoError(t, err)
	tokens := clientauth.NewTokenServiceFromConfig(ring, newMockConfig(), nil)

	verifier := clientauth.NewCredentialVerifier(manager.Credentials())

	auther := clientauth.NewAuthenticator(verifier, tokens, newMockConfig()).
		WithEventPublisher(publisher)

	t.Run("seeded credential authenticates", func(t *testing.T) {
		response, err := auther.Authenticate(ctx, "123456", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", response.TokenType)

		claims, err := auther.ValidateToken(response.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "123456", claims.Subject())
		assert.Equal(t, "123456", claims.ClientID())

		cred, err := manager.Credentials().GetByClientID(ctx, "123456")
		require.NoError(t, err)
		assert.NotNil(t, cred.LastUsedAt)
	})

	t.Run("wrong secret fails generically", func(t *testing.T) {
		_, err := auther.Authenticate(ctx, "123456", "wrongpass")
		assert.ErrorIs(t, err, clientauth.ErrAuthenticationFailed)
	})

	t.Run("unknown client fails with the same error", func(t *testing.T) {
		_, err := auther.Authenticate(ctx, "999999", "anything")
		assert.ErrorIs(t, err, clientauth.ErrAuthenticationFailed)
		assert.NotErrorIs(t, err, clientauth.ErrServiceUnavailable)
	})

	t.Run("deactivated credential fails identically", func(t *testing.T) {
		require.NoError(t, manager.Credentials().Deactivate(ctx, "123456"))
		_, err := auther.Authenticate(ctx, "123456", "secret123")
		assert.ErrorIs(t, err, clientauth.ErrAuthenticationFailed)
		require.NoError(t, manager.Credentials().Reinstate(ctx, "123456"))
	})

	t.Run("outcome events reach the stream", func(t *testing.T) {
		entries, err := redisClient.XRange(ctx, clientauth.DefaultEventStream, "-", "+").Result()
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		var successes, failures int
		for _, entry := range entries {
			switch entry.Values["outcome"] {
			case clientauth.OutcomeSuccess:
				successes++
			case clientauth.OutcomeFailure:
				failures++
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 3, failures)
		assert.Zero(t, publisher.FailureCount())
	})
}

func TestShortLivedTokenExpires(t *testing.T) {
	ring, err := clientauth.NewKeyRing([]byte("expiry-signing-key"))
	require.NoError(t, err)
	tokens := clientauth.NewTokenService(ring, time.Hour, "test-issuer", nil, time.Millisecond, nil)

	token, err := tokens.Issue("123456", time.Second)
	require.NoError(t, err)

	claims, err := tokens.Validate(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "123456", claims.Subject())

	time.Sleep(2 * time.Second)

	_, err = tokens.Validate(token.Token)
	assert.ErrorIs(t, err, clientauth.ErrTokenExpired)
}
