package clientauth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// Verifier checks client identifier/secret pairs against the credential
// store. Every failure path performs exactly one bcrypt comparison and
// collapses into ErrAuthenticationFailed so callers cannot tell a missing
// identifier from an inactive record or a wrong secret, by timing or by
// error shape.
type Verifier struct {
	store       CredentialStore
	hasher      SecretHasher
	placeholder string
	logger      Logger
	now         func() time.Time
}

// NewCredentialVerifier will create a new Verifier backed by the given store.
func NewCredentialVerifier(store CredentialStore) *Verifier {
	return &Verifier{
		store:       store,
		hasher:      NewSecretHasher(DefaultBcryptCost),
		placeholder: placeholderDigest,
		logger:      defLogger{},
		now:         time.Now,
	}
}

func (v *Verifier) WithLogger(logger Logger) *Verifier {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// WithSecretHasher overrides the hasher, e.g. to lower the cost in tests.
func (v *Verifier) WithSecretHasher(hasher SecretHasher) *Verifier {
	if hasher != nil {
		v.hasher = hasher
	}
	return v
}

// WithPlaceholderDigest overrides the digest used for dummy comparisons.
// Its embedded cost must match the cost of stored digests, otherwise the
// miss path costs a different amount than the mismatch path.
func (v *Verifier) WithPlaceholderDigest(digest string) *Verifier {
	if digest != "" {
		v.placeholder = digest
	}
	return v
}

// WithClock injects a custom clock (useful for tests).
func (v *Verifier) WithClock(clock func() time.Time) *Verifier {
	if clock != nil {
		v.now = clock
	}
	return v
}

// Verify looks up the credential and compares the secret. The hash
// comparison runs before the active-state check, and a placeholder digest
// is compared when the record is missing; do not reorder these to "save" a
// bcrypt call, the uniform cost is the point.
func (v *Verifier) Verify(ctx context.Context, clientID, secret string) (VerificationResult, error) {
	if clientID == "" || secret == "" {
		v.hasher.Verify(secret, v.placeholder)
		return v.fail(clientID, ReasonEmptyInput)
	}

	cred, err := v.store.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.IsNotFound(err) {
			v.hasher.Verify(secret, v.placeholder)
			return v.fail(clientID, ReasonNotFound)
		}
		return VerificationResult{}, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve credential during verification")
	}

	if cred == nil {
		v.hasher.Verify(secret, v.placeholder)
		return v.fail(clientID, ReasonNotFound)
	}

	match := v.hasher.Verify(secret, cred.SecretHash)

	if !cred.Active {
		return v.fail(clientID, ReasonInactive)
	}

	if !match {
		return v.fail(clientID, ReasonMismatch)
	}

	// best effort, a failed touch must not fail the authentication
	if err := v.store.Touch(ctx, clientID, v.now()); err != nil {
		v.logger.Error("failed to track credential use", "client_id", clientID, "error", err)
	}

	return VerificationResult{OK: true, ClientID: clientID}, nil
}

func (v *Verifier) fail(clientID, reason string) (VerificationResult, error) {
	return VerificationResult{ClientID: clientID, Reason: reason}, ErrAuthenticationFailed
}

var _ CredentialVerifier = (*Verifier)(nil)
