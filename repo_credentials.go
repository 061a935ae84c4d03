package clientauth

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Credentials is the persistence surface for client credential records. It
// also satisfies the CredentialStore contract the verifier depends on.
type Credentials interface {
	repository.Repository[*ClientCredential]

	GetByClientID(ctx context.Context, clientID string) (*ClientCredential, error)
	Touch(ctx context.Context, clientID string, at time.Time) error
	Deactivate(ctx context.Context, clientID string) error
	Reinstate(ctx context.Context, clientID string) error
}

type credentials struct {
	repository.Repository[*ClientCredential]
	db *bun.DB
}

var (
	_ Credentials                              = (*credentials)(nil)
	_ repository.Repository[*ClientCredential] = (*credentials)(nil)
	_ CredentialStore                          = (*credentials)(nil)
)

// NewCredentialsRepository builds the bun-backed credentials repository.
func NewCredentialsRepository(db *bun.DB) Credentials {
	repo := repository.NewRepository[*ClientCredential](db, repository.ModelHandlers[*ClientCredential]{
		NewRecord: func() *ClientCredential { return &ClientCredential{} },
		GetID: func(c *ClientCredential) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *ClientCredential, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "client_id"
		},
	})

	return &credentials{
		Repository: repo,
		db:         db,
	}
}

// GetByClientID fetches a credential record by its opaque client identifier.
// A miss is normalized into a categorized not-found error so callers of the
// CredentialStore port never see the repository's own miss shape.
func (r *credentials) GetByClientID(ctx context.Context, clientID string) (*ClientCredential, error) {
	cred, err := r.GetByIdentifier(ctx, clientID)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("credential not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound).
				WithMetadata(map[string]any{
					"client_id": clientID,
				})
		}
		return nil, err
	}
	return cred, nil
}

// Touch updates last_used_at for the record. The guard keeps the column
// monotonically non-decreasing under concurrent updates; losing the race is
// fine (last-write-wins on equal-or-newer timestamps).
func (r *credentials) Touch(ctx context.Context, clientID string, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*ClientCredential)(nil)).
		Set("last_used_at = ?", at).
		Set("updated_at = ?", at).
		Where("client_id = ?", clientID).
		Where("last_used_at IS NULL OR last_used_at < ?", at).
		Exec(ctx)
	return err
}

// Deactivate flips the record inactive. Inactive credentials keep failing
// verification with the generic outcome.
func (r *credentials) Deactivate(ctx context.Context, clientID string) error {
	return r.setActive(ctx, clientID, false)
}

// Reinstate flips the record back to active.
func (r *credentials) Reinstate(ctx context.Context, clientID string) error {
	return r.setActive(ctx, clientID, true)
}

func (r *credentials) setActive(ctx context.Context, clientID string, active bool) error {
	_, err := r.db.NewUpdate().
		Model((*ClientCredential)(nil)).
		Set("active = ?", active).
		Set("updated_at = ?", time.Now()).
		Where("client_id = ?", clientID).
		Exec(ctx)
	return err
}
