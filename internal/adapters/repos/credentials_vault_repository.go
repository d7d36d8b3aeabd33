package repos

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/ports"
)

// VaultCredentialStore reads one KV v2 secret per credential from
// {mount}/data/{prefix}/{name} with the keys host, accessToken and scheme.
type VaultCredentialStore struct {
	secrets ports.SecretsRepository
	mount   string
	prefix  string
}

func NewVaultCredentialStore(secrets ports.SecretsRepository, mount, prefix string) *VaultCredentialStore {
	return &VaultCredentialStore{
		secrets: secrets,
		mount:   mount,
		prefix:  prefix,
	}
}

func (s *VaultCredentialStore) Get(ctx context.Context, name string) (model.Credential, error) {
	if name == "" || strings.Contains(name, "/") {
		return model.Credential{}, fmt.Errorf("%w: %q", model.ErrCredentialNotFound, name)
	}

	secret, err := s.secrets.GetSecrets(ctx, path.Join(s.mount, "data", s.prefix, name))
	if err != nil {
		return model.Credential{}, fmt.Errorf("reading credential %s: %w", name, err)
	}

	if secret == nil || secret.Data == nil {
		return model.Credential{}, fmt.Errorf("%w: %s", model.ErrCredentialNotFound, name)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return model.Credential{}, fmt.Errorf("%w: %s", model.ErrCredentialNotFound, name)
	}

	credential := model.Credential{
		Name:        name,
		Host:        strings.TrimRight(stringValue(data, "host"), "/"),
		AccessToken: stringValue(data, "accessToken"),
		Scheme:      model.AuthScheme(stringValue(data, "scheme")),
	}

	if credential.IsZero() {
		return model.Credential{}, fmt.Errorf("credential %s has neither host nor access token", name)
	}

	return credential, nil
}

func stringValue(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
