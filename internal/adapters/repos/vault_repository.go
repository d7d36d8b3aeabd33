package repos

import (
	"context"

	"github.com/hashicorp/vault/api"

	"github.com/architeacher/connectors/internal/ports"
)

// VaultRepository implements ports.SecretsRepository on the Vault API client.
type VaultRepository struct {
	client *api.Client
}

var _ ports.SecretsRepository = (*VaultRepository)(nil)

func NewVaultRepository(client *api.Client) *VaultRepository {
	return &VaultRepository{client: client}
}

func (r *VaultRepository) SetToken(v string) {
	r.client.SetToken(v)
}

func (r *VaultRepository) GetSecrets(ctx context.Context, path string) (*api.Secret, error) {
	return r.client.Logical().ReadWithContext(ctx, path)
}

func (r *VaultRepository) WriteWithContext(ctx context.Context, path string, data map[string]any) (*api.Secret, error) {
	return r.client.Logical().WriteWithContext(ctx, path, data)
}
