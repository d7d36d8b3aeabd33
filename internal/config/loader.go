package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
	"github.com/kelseyhightower/envconfig"

	"github.com/architeacher/connectors/internal/ports"
)

// Init reads the service configuration from the environment.
func Init() (*ServiceConfig, error) {
	cfg := &ServiceConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service configuration: %w", err)
	}

	return cfg, nil
}

// Loader overlays secrets kept in Vault onto the environment configuration.
type Loader struct {
	cfg         *ServiceConfig
	secretsRepo ports.SecretsRepository
	backOff     backoff.BackOff
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithBackOff replaces the policy spacing Vault read attempts.
func WithBackOff(b backoff.BackOff) LoaderOption {
	return func(l *Loader) {
		l.backOff = b
	}
}

func defaultBackOff() backoff.BackOff {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = time.Second
	expBackoff.Multiplier = 2
	expBackoff.MaxInterval = 8 * time.Second

	return expBackoff
}

func NewLoader(cfg *ServiceConfig, secretsRepo ports.SecretsRepository, opts ...LoaderOption) *Loader {
	loader := &Loader{
		cfg:         cfg,
		secretsRepo: secretsRepo,
		backOff:     defaultBackOff(),
	}

	for _, opt := range opts {
		opt(loader)
	}

	return loader
}

// Load authenticates against Vault and applies the service secrets. It
// returns the version of the secret it applied.
func (l *Loader) Load(ctx context.Context) (uint, error) {
	if !l.cfg.SecretsStorage.Enabled {
		return 0, fmt.Errorf("secret storage is not enabled")
	}

	if err := Authenticate(ctx, l.secretsRepo, l.cfg.SecretsStorage); err != nil {
		return 0, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	secret, err := l.readWithRetry(ctx, "apps/data/"+l.cfg.SecretsStorage.MountPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return 0, nil
	}

	if data, ok := secret.Data["data"].(map[string]any); ok {
		l.apply(data)
	}

	metadata, _ := secret.Data["metadata"].(map[string]any)

	return secretVersion(metadata)
}

// Authenticate logs the repository in with the configured auth method.
func Authenticate(ctx context.Context, client ports.SecretsRepository, config SecretsStorage) error {
	switch strings.ToLower(config.AuthMethod) {
	case "token":
		if config.Token == "" {
			return fmt.Errorf("token is required for token auth method")
		}

		client.SetToken(config.Token)

		return nil
	case "approle":
		if config.RoleID == "" || config.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth method")
		}

		resp, err := client.WriteWithContext(ctx, "auth/approle/login", map[string]any{
			"role_id":   config.RoleID,
			"secret_id": config.SecretID,
		})
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("no auth info returned from Vault")
		}

		client.SetToken(resp.Auth.ClientToken)

		return nil
	default:
		return fmt.Errorf("unsupported auth method: %s", config.AuthMethod)
	}
}

func (l *Loader) readWithRetry(ctx context.Context, path string) (*api.Secret, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.SecretsStorage.Timeout)
	defer cancel()

	operation := func() (*api.Secret, error) {
		return l.secretsRepo.GetSecrets(ctx, path)
	}

	secret, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithMaxTries(l.cfg.SecretsStorage.MaxRetries+1),
		backoff.WithBackOff(l.backOff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read from path %s after %d retries: %w", path, l.cfg.SecretsStorage.MaxRetries, err)
	}

	return secret, nil
}

// apply copies the known secret keys into the configuration. Unknown keys
// are ignored.
func (l *Loader) apply(data map[string]any) {
	for key, value := range data {
		text, ok := value.(string)
		if !ok || text == "" {
			continue
		}

		switch key {
		case "CACHE_PASSWORD":
			l.cfg.Cache.Password = text
		case "CACHE_ADDRESS":
			l.cfg.Cache.Address = text
		case "OTEL_HOST":
			l.cfg.Telemetry.OtelGRPCHost = text
		}
	}
}

func secretVersion(metadata map[string]any) (uint, error) {
	current, ok := metadata["version"]
	if !ok {
		return 0, nil
	}

	switch v := current.(type) {
	case float64:
		return uint(v), nil
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("failed to parse version: %w", err)
		}

		return uint(version), nil
	default:
		return 0, fmt.Errorf("unexpected version type: %T", current)
	}
}

// Dump writes the configuration as indented JSON; secret fields are not
// serialized.
func (c *ServiceConfig) Dump(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(c)
}
