package clientauth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ClientCredential is the stored record for a machine client. The plaintext
// secret is hashed before it ever reaches this model.
type ClientCredential struct {
	bun.BaseModel `bun:"table:client_credentials,alias:cred"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ClientID      string     `bun:"client_id,notnull,unique" json:"client_id,omitempty"`
	SecretHash    string     `bun:"secret_hash,notnull" json:"-"`
	Active        bool       `bun:"active,notnull" json:"active"`
	LastUsedAt    *time.Time `bun:"last_used_at,nullzero" json:"last_used_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AuthOutcome is the result category of an authentication attempt
type AuthOutcome = string

const (
	// OutcomeSuccess marks a verified attempt that produced a token
	OutcomeSuccess AuthOutcome = "success"
	// OutcomeFailure marks a rejected attempt
	OutcomeFailure AuthOutcome = "failure"
)

// Internal failure reasons carried on events. They never surface through
// the caller-facing error.
const (
	ReasonNotFound   = "credential.not_found"
	ReasonInactive   = "credential.inactive"
	ReasonMismatch   = "credential.secret_mismatch"
	ReasonEmptyInput = "credential.empty_input"
)

// AuthEvent captures the outcome of a single authentication attempt. Events
// are created once, published asynchronously, and never mutated.
type AuthEvent struct {
	ClientID  string    `json:"client_id"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IssuedToken is the logical result of minting a token. It is not persisted;
// TokenID exists for future revocation hooks.
type IssuedToken struct {
	Token     string
	TokenID   string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenResponse is the caller-facing success payload
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
