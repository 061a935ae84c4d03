package clientauth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// SecretHasher hashes and verifies client secrets
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// CredentialStore is the minimal lookup contract the verifier needs. The
// full repository (Credentials) implements it; hosts can plug any backend.
type CredentialStore interface {
	GetByClientID(ctx context.Context, clientID string) (*ClientCredential, error)
	Touch(ctx context.Context, clientID string, at time.Time) error
}

// VerificationResult is the outcome of a credential check. On failure the
// Reason only annotates the published event; it never reaches the caller.
type VerificationResult struct {
	OK       bool
	ClientID string
	Reason   string
}

// CredentialVerifier confirms a client identifier/secret pair
type CredentialVerifier interface {
	Verify(ctx context.Context, clientID, secret string) (VerificationResult, error)
}

// TokenIssuer mints signed access tokens
type TokenIssuer interface {
	Issue(clientID string, ttl time.Duration) (*IssuedToken, error)
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenService issues and validates tokens against the same key ring
type TokenService interface {
	TokenIssuer
	TokenValidator
	SignClaims(claims *AccessClaims) (string, error)
}

// EventPublisher emits authentication events. Publish is bounded by the
// context deadline; implementations must count failures rather than block
// or drop silently.
type EventPublisher interface {
	Publish(ctx context.Context, event AuthEvent) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetPreviousSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetTokenTTL() time.Duration
	GetClockSkewLeeway() time.Duration
	GetPublishTimeout() time.Duration
	GetMaxIssueAttempts() int
	GetEventStream() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CLIENTAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CLIENTAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CLIENTAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
