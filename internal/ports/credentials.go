package ports

import (
	"context"

	"github.com/architeacher/connectors/internal/domain/model"
)

// CredentialStore resolves a named credential. Missing names yield
// model.ErrCredentialNotFound.
type CredentialStore interface {
	Get(ctx context.Context, name string) (model.Credential, error)
}
