package clientauth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor applied to new secret digests.
const DefaultBcryptCost = 14

// placeholderDigest is a fixed bcrypt digest used for dummy comparisons when
// a client identifier does not resolve to a record. Comparing against it
// keeps the wall-clock cost of a miss in line with a real mismatch, so
// lookups cannot be distinguished by timing. The plaintext behind it is not
// a valid secret for any client.
const placeholderDigest = "$2a$14$x.W6ZmiOW1Nw7HTCIbOfvuBMDVxyOAX3.Rx0DJSso4prcBrRj1rO."

// HashSecret will generate a digest for a client secret
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(secret), DefaultBcryptCost)
	return string(h), err
}

// CompareSecretAndHash will validate the given cleartext secret matches the
// stored digest. A malformed digest is reported as a mismatch, not as a
// distinguishable error.
func CompareSecretAndHash(secret, digest string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)); err != nil {
		// malformed digests collapse into the mismatch outcome
		return ErrMismatchedHashAndDigest
	}
	return nil
}

type bcryptHasher struct {
	cost int
}

// NewSecretHasher returns the default bcrypt-backed SecretHasher. A cost of
// zero falls back to DefaultBcryptCost.
func NewSecretHasher(cost int) SecretHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return bcryptHasher{cost: cost}
}

func (h bcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}
	d, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	return string(d), err
}

func (h bcryptHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
