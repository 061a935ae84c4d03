package clientauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the decoded claims of a validated access token
type AuthClaims interface {
	Subject() string
	ClientID() string
	TokenID() string
	Issuer() string
	Expires() time.Time
	IssuedAt() time.Time
}

// AccessClaims is the concrete implementation of AuthClaims
type AccessClaims struct {
	jwt.RegisteredClaims
	CID    string   `json:"cid,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*AccessClaims)(nil)

// Subject returns the subject claim
func (c *AccessClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// ClientID returns the client identifier the token represents
func (c *AccessClaims) ClientID() string {
	if c.CID != "" {
		return c.CID
	}
	return c.Subject()
}

// TokenID returns the unique token identifier (jti)
func (c *AccessClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Issuer returns the issuer claim
func (c *AccessClaims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *AccessClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = newTokenID()
	}
}
