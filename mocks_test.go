package clientauth_test

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-clientauth"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore implements clientauth.CredentialStore for testing
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByClientID(ctx context.Context, clientID string) (*clientauth.ClientCredential, error) {
	args := m.Called(ctx, clientID)
	if cred, ok := args.Get(0).(*clientauth.ClientCredential); ok {
		return cred, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) Touch(ctx context.Context, clientID string, at time.Time) error {
	args := m.Called(ctx, clientID, at)
	return args.Error(0)
}

// MockLogger implements clientauth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// countingHasher wraps another hasher and records every Verify call, so
// tests can assert the verifier performs exactly one comparison per attempt
// regardless of the failure path.
type countingHasher struct {
	inner   clientauth.SecretHasher
	mu      sync.Mutex
	digests []string
}

func newCountingHasher(inner clientauth.SecretHasher) *countingHasher {
	return &countingHasher{inner: inner}
}

func (h *countingHasher) Hash(secret string) (string, error) {
	return h.inner.Hash(secret)
}

func (h *countingHasher) Verify(secret, digest string) bool {
	h.mu.Lock()
	h.digests = append(h.digests, digest)
	h.mu.Unlock()
	return h.inner.Verify(secret, digest)
}

func (h *countingHasher) verifyCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.digests)
}

// capturingPublisher records published events for assertions
type capturingPublisher struct {
	mu     sync.Mutex
	events []clientauth.AuthEvent
	err    error
}

func (c *capturingPublisher) Publish(ctx context.Context, event clientauth.AuthEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func (c *capturingPublisher) published() []clientauth.AuthEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]clientauth.AuthEvent, len(c.events))
	copy(out, c.events)
	return out
}

// mockConfig implements clientauth.Config with overridable fields
type mockConfig struct {
	signingKey         string
	previousSigningKey string
	issuer             string
	audience           []string
	tokenTTL           time.Duration
	leeway             time.Duration
	publishTimeout     time.Duration
	maxIssueAttempts   int
	eventStream        string
}

func newMockConfig() *mockConfig {
	return &mockConfig{
		signingKey:     "test-signing-key",
		issuer:         "test-issuer",
		audience:       []string{"test-audience"},
		tokenTTL:       time.Hour,
		leeway:         time.Second,
		publishTimeout: 100 * time.Millisecond,
	}
}

func (c *mockConfig) GetSigningKey() string             { return c.signingKey }
func (c *mockConfig) GetPreviousSigningKey() string     { return c.previousSigningKey }
func (c *mockConfig) GetIssuer() string                 { return c.issuer }
func (c *mockConfig) GetAudience() []string             { return c.audience }
func (c *mockConfig) GetTokenTTL() time.Duration        { return c.tokenTTL }
func (c *mockConfig) GetClockSkewLeeway() time.Duration { return c.leeway }
func (c *mockConfig) GetPublishTimeout() time.Duration  { return c.publishTimeout }
func (c *mockConfig) GetMaxIssueAttempts() int          { return c.maxIssueAttempts }
func (c *mockConfig) GetEventStream() string            { return c.eventStream }

func notFoundErr(msg string) error {
	return errors.New(msg, errors.CategoryNotFound).WithCode(errors.CodeNotFound)
}
