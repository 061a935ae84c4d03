package clientauth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-errors"
)

// DefaultTokenTTL matches the upstream token lifetime.
const DefaultTokenTTL = 10 * time.Hour

// DefaultMaxIssueAttempts bounds retries for transient signing failures.
const DefaultMaxIssueAttempts = 3

// DefaultRetryBackoff is the initial backoff between issue attempts; it
// doubles on each retry.
const DefaultRetryBackoff = 50 * time.Millisecond

// Authenticator handles the client-credentials flow end to end
type Authenticator interface {
	Authenticate(ctx context.Context, clientID, clientSecret string) (*TokenResponse, error)
	ValidateToken(tokenString string) (AuthClaims, error)
}

// Auther composes verifier, token service, and event publisher into the
// request flow: verify the pair, mint a token, publish the outcome. A
// failed verification is never retried; transient issuance failures are
// retried with backoff before collapsing into ErrServiceUnavailable.
type Auther struct {
	verifier          CredentialVerifier
	tokens            TokenService
	publisher         EventPublisher
	logger            Logger
	tokenTTL          time.Duration
	publishTimeout    time.Duration
	maxIssueAttempts  int
	retryBackoff      time.Duration
	degradedPublishes atomic.Uint64
	now               func() time.Time
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(verifier CredentialVerifier, tokens TokenService, opts Config) *Auther {
	tokenTTL := DefaultTokenTTL
	publishTimeout := DefaultPublishTimeout
	maxIssueAttempts := DefaultMaxIssueAttempts

	if opts != nil {
		if ttl := opts.GetTokenTTL(); ttl > 0 {
			tokenTTL = ttl
		}
		if timeout := opts.GetPublishTimeout(); timeout > 0 {
			publishTimeout = timeout
		}
		if attempts := opts.GetMaxIssueAttempts(); attempts > 0 {
			maxIssueAttempts = attempts
		}
	}

	return &Auther{
		verifier:         verifier,
		tokens:           tokens,
		publisher:        noopEventPublisher{},
		logger:           defLogger{},
		tokenTTL:         tokenTTL,
		publishTimeout:   publishTimeout,
		maxIssueAttempts: maxIssueAttempts,
		retryBackoff:     DefaultRetryBackoff,
		now:              time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithEventPublisher configures the sink for authentication outcome events.
func (s *Auther) WithEventPublisher(publisher EventPublisher) *Auther {
	s.publisher = normalizeEventPublisher(publisher)
	return s
}

// WithRetryBackoff overrides the initial backoff between issue attempts.
func (s *Auther) WithRetryBackoff(backoff time.Duration) *Auther {
	if backoff > 0 {
		s.retryBackoff = backoff
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *Auther) WithClock(clock func() time.Time) *Auther {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Authenticate verifies the pair and returns a bearer token response. All
// credential failures surface as ErrAuthenticationFailed with no detail;
// transient infrastructure failures surface as ErrServiceUnavailable.
func (s *Auther) Authenticate(ctx context.Context, clientID, clientSecret string) (*TokenResponse, error) {
	result, err := s.verifier.Verify(ctx, clientID, clientSecret)
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			s.publish(ctx, AuthEvent{
				ClientID:  clientID,
				Outcome:   OutcomeFailure,
				Reason:    result.Reason,
				Timestamp: s.now(),
			})
			return nil, ErrAuthenticationFailed
		}

		s.logger.Error("credential store unavailable during verification", "client_id", clientID, "error", err)
		return nil, ErrServiceUnavailable
	}

	token, err := s.issueWithRetry(ctx, result.ClientID)
	if err != nil {
		s.logger.Error("token issuance failed after retries", "client_id", result.ClientID, "error", err)
		return nil, ErrServiceUnavailable
	}

	s.publish(ctx, AuthEvent{
		ClientID:  result.ClientID,
		Outcome:   OutcomeSuccess,
		Timestamp: s.now(),
	})

	return &TokenResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(token.ExpiresAt.Sub(token.IssuedAt) / time.Second),
	}, nil
}

// ValidateToken validates a bearer token string and returns its claims.
func (s *Auther) ValidateToken(tokenString string) (AuthClaims, error) {
	return s.tokens.Validate(tokenString)
}

// DegradedPublishCount reports how many outcome events degraded to a log
// line instead of reaching the publisher.
func (s *Auther) DegradedPublishCount() uint64 {
	return s.degradedPublishes.Load()
}

func (s *Auther) issueWithRetry(ctx context.Context, clientID string) (*IssuedToken, error) {
	backoff := s.retryBackoff
	var lastErr error

	for attempt := 0; attempt < s.maxIssueAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		token, err := s.tokens.Issue(clientID, s.tokenTTL)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

// publish is bounded and best-effort: a slow or failing event stream must
// never fail or stall the authentication response.
func (s *Auther) publish(ctx context.Context, event AuthEvent) {
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, event); err != nil {
		s.degradedPublishes.Add(1)
		s.logger.Error("auth event publish degraded to log", "client_id", event.ClientID, "outcome", event.Outcome, "error", err)
	}
}

var _ Authenticator = (*Auther)(nil)
