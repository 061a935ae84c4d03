package clientauth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// CreateCredentialMessage provisions a client credential. The plaintext
// secret is hashed before it touches storage.
type CreateCredentialMessage struct {
	ClientID  string `json:"client_id"`
	Secret    string `json:"secret"`
	Active    bool   `json:"active"`
	UseHashid bool
}

func (e CreateCredentialMessage) Type() string { return "credential.create" }

// Validate checks the provisioning payload before any hashing work.
func (e CreateCredentialMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ClientID, validation.Required, validation.Length(1, 128)),
		validation.Field(&e.Secret, validation.Required, validation.Length(8, 256)),
	)
}

// CreateCredentialHandler seeds credential records inside a transaction.
type CreateCredentialHandler struct {
	repo RepositoryManager
}

func NewCreateCredentialHandler(repo RepositoryManager) *CreateCredentialHandler {
	return &CreateCredentialHandler{repo: repo}
}

func (h *CreateCredentialHandler) Execute(ctx context.Context, event CreateCredentialMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during credential provisioning",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateCredentialHandler) execute(ctx context.Context, event CreateCredentialMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid credential provisioning payload")
	}

	cred := &ClientCredential{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashSecret(event.Secret)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid secret provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash secret")
		}

		cred.ClientID = event.ClientID
		cred.SecretHash = hash
		cred.Active = event.Active
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.ClientID); err == nil {
				cred.ID = id
			}
		}

		if cred, err = h.repo.Credentials().CreateTx(ctx, tx, cred); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create credential")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "credential provisioning transaction failed")
	}

	return nil
}
