package clientauth

import (
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SigningKey is one HMAC key in the ring. Kid travels in the token header so
// validators can pick the right key without trial verification.
type SigningKey struct {
	Kid       string
	Secret    []byte
	CreatedAt time.Time
	RetiredAt *time.Time
}

// IsRetired reports whether the key has been rotated out of active signing.
func (k SigningKey) IsRetired() bool {
	return k.RetiredAt != nil
}

// KeyRing holds the current signing key plus at most one retired key kept
// for a verification grace window. Reads take no exclusive lock; rotation
// is a rare administrator-triggered write.
type KeyRing struct {
	mu       sync.RWMutex
	current  SigningKey
	previous *SigningKey
	now      func() time.Time
}

// KeyRingOption customizes key ring construction.
type KeyRingOption func(*KeyRing)

// WithKeyRingClock injects a custom clock (useful for tests).
func WithKeyRingClock(clock func() time.Time) KeyRingOption {
	return func(kr *KeyRing) {
		if clock != nil {
			kr.now = clock
		}
	}
}

// NewKeyRing creates a ring with a single active key.
func NewKeyRing(secret []byte, opts ...KeyRingOption) (*KeyRing, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing key must not be empty", errors.CategoryBadInput)
	}

	kr := &KeyRing{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(kr)
		}
	}

	kr.current = SigningKey{
		Kid:       newKid(),
		Secret:    append([]byte(nil), secret...),
		CreatedAt: kr.now(),
	}
	return kr, nil
}

// NewKeyRingFromConfig builds a ring from configured key material. When a
// previous signing key is configured it lands in the grace slot, so a fresh
// process keeps validating tokens issued before its last rotation.
func NewKeyRingFromConfig(cfg Config, opts ...KeyRingOption) (*KeyRing, error) {
	if cfg == nil {
		return nil, errors.New("config is required", errors.CategoryBadInput)
	}

	if prev := cfg.GetPreviousSigningKey(); prev != "" {
		kr, err := NewKeyRing([]byte(prev), opts...)
		if err != nil {
			return nil, err
		}
		if err := kr.Rotate([]byte(cfg.GetSigningKey())); err != nil {
			return nil, err
		}
		return kr, nil
	}

	return NewKeyRing([]byte(cfg.GetSigningKey()), opts...)
}

// Rotate installs a new current key and retires the old one into the grace
// slot. A previously retired key is dropped: tokens signed under it stop
// verifying.
func (kr *KeyRing) Rotate(secret []byte) error {
	if len(secret) == 0 {
		return errors.New("signing key must not be empty", errors.CategoryBadInput)
	}

	kr.mu.Lock()
	defer kr.mu.Unlock()

	retired := kr.current
	at := kr.now()
	retired.RetiredAt = &at
	kr.previous = &retired

	kr.current = SigningKey{
		Kid:       newKid(),
		Secret:    append([]byte(nil), secret...),
		CreatedAt: at,
	}
	return nil
}

// Current returns the active signing key.
func (kr *KeyRing) Current() SigningKey {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	return kr.current
}

// VerificationKeys returns the keys a validator should try, current first.
func (kr *KeyRing) VerificationKeys() []SigningKey {
	kr.mu.RLock()
	defer kr.mu.RUnlock()

	keys := []SigningKey{kr.current}
	if kr.previous != nil {
		keys = append(keys, *kr.previous)
	}
	return keys
}

// Lookup returns the key matching kid, if any.
func (kr *KeyRing) Lookup(kid string) (SigningKey, bool) {
	kr.mu.RLock()
	defer kr.mu.RUnlock()

	if kr.current.Kid == kid {
		return kr.current, true
	}
	if kr.previous != nil && kr.previous.Kid == kid {
		return *kr.previous, true
	}
	return SigningKey{}, false
}

func newKid() string {
	return uuid.NewString()
}
