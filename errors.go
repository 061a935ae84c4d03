package clientauth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeAuthenticationFailed is the single code every credential
	// problem collapses into.
	TextCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	// TextCodeTokenExpired marks tokens past their expiry (plus leeway).
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks tokens that fail structural parsing.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeInvalidSignature marks tokens that no key ring entry verifies.
	TextCodeInvalidSignature = "INVALID_SIGNATURE"
	// TextCodeServiceUnavailable marks transient infrastructure failures.
	TextCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrAuthenticationFailed is returned for every credential failure. Missing
// identifiers, inactive credentials, and wrong secrets are indistinguishable
// through this error on purpose.
var ErrAuthenticationFailed = errors.New("authentication failed", errors.CategoryAuth).
	WithTextCode(TextCodeAuthenticationFailed)

// ErrTokenExpired is returned when a token is past its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned when a token cannot be parsed.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrInvalidSignature is returned when no signing key verifies the token.
var ErrInvalidSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidSignature)

// ErrServiceUnavailable is returned after bounded retries against transient
// infrastructure failures are exhausted.
var ErrServiceUnavailable = errors.New("service unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeServiceUnavailable)

// ErrNoEmptyString is returned when hashing an empty secret.
var ErrNoEmptyString = errors.New("secret must not be empty", errors.CategoryBadInput)

// ErrMismatchedHashAndDigest is the internal mismatch error. It never crosses
// the service boundary; Auther maps it to ErrAuthenticationFailed.
var ErrMismatchedHashAndDigest = errors.New("secret does not match digest", errors.CategoryAuth)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsSignatureError will check for signature verification failures
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidSignature) {
		return true
	}
	return strings.Contains(err.Error(), "signature is invalid")
}
