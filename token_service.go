package clientauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultClockSkewLeeway tolerates small clock drift between the issuing and
// validating hosts when checking expiry.
const DefaultClockSkewLeeway = 5 * time.Second

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	keys     *KeyRing
	tokenTTL time.Duration
	issuer   string
	audience jwt.ClaimStrings
	leeway   time.Duration
	logger   Logger
	now      func() time.Time
}

// NewTokenService creates a new TokenService instance backed by the given
// key ring. A zero leeway falls back to DefaultClockSkewLeeway.
func NewTokenService(keys *KeyRing, tokenTTL time.Duration, issuer string, audience jwt.ClaimStrings, leeway time.Duration, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if leeway <= 0 {
		leeway = DefaultClockSkewLeeway
	}
	return &TokenServiceImpl{
		keys:     keys,
		tokenTTL: tokenTTL,
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
		logger:   logger,
		now:      time.Now,
	}
}

// NewTokenServiceFromConfig builds a TokenService from auth options.
func NewTokenServiceFromConfig(keys *KeyRing, cfg Config, logger Logger) TokenService {
	var (
		ttl      time.Duration
		issuer   string
		audience jwt.ClaimStrings
		leeway   time.Duration
	)
	if cfg != nil {
		ttl = cfg.GetTokenTTL()
		issuer = cfg.GetIssuer()
		audience = cfg.GetAudience()
		leeway = cfg.GetClockSkewLeeway()
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return NewTokenService(keys, ttl, issuer, audience, leeway, logger)
}

// WithClock overrides the time source (useful for tests).
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// Issue mints a signed access token for the given client. A zero ttl uses
// the service default.
func (ts *TokenServiceImpl) Issue(clientID string, ttl time.Duration) (*IssuedToken, error) {
	if clientID == "" {
		return nil, errors.New("client id is required", errors.CategoryBadInput)
	}
	if ttl < 0 {
		return nil, errors.New("token TTL must be non-negative", errors.CategoryBadInput)
	}
	if ttl == 0 {
		ttl = ts.tokenTTL
	}

	issuedAt := ts.now()
	expiresAt := issuedAt.Add(ttl)

	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   clientID,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		CID: clientID,
	}

	ensureTokenID(&claims.RegisteredClaims)

	signed, err := ts.SignClaims(claims)
	if err != nil {
		return nil, err
	}

	return &IssuedToken{
		Token:     signed,
		TokenID:   claims.RegisteredClaims.ID,
		Subject:   clientID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// SignClaims signs arbitrary access claims using the current signing key.
func (ts *TokenServiceImpl) SignClaims(claims *AccessClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	key := ts.keys.Current()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = key.Kid

	signedString, err := token.SignedString(key.Secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Every key in the ring is tried, current first, so tokens signed just
// before a rotation keep validating during the grace window.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 4)
	parserOptions = append(parserOptions, jwt.WithLeeway(ts.leeway), jwt.WithTimeFunc(ts.now))
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	var signatureErr error
	for _, key := range ts.keys.VerificationKeys() {
		secret := key.Secret
		token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		}, parserOptions...)

		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				return nil, ErrTokenExpired
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				// try the previous key before giving up
				signatureErr = ErrInvalidSignature
				continue
			default:
				return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
			}
		}

		if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
			return claims, nil
		}

		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, ErrTokenMalformed
	}

	if signatureErr != nil {
		return nil, signatureErr
	}
	return nil, ErrInvalidSignature
}

func newTokenID() string {
	return uuid.NewString()
}
