package repos

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/architeacher/connectors/internal/domain/model"
)

type credentialsFile struct {
	Credentials []model.Credential `yaml:"credentials"`
}

// FileCredentialStore serves credentials from a YAML file read once on
// first use:
//
//	credentials:
//	  - name: shop
//	    host: https://shop.example.com
//	    accessToken: secret
type FileCredentialStore struct {
	path string
	load func() (map[string]model.Credential, error)
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	store := &FileCredentialStore{path: path}
	store.load = sync.OnceValues(store.read)

	return store
}

func (s *FileCredentialStore) Get(_ context.Context, name string) (model.Credential, error) {
	credentials, err := s.load()
	if err != nil {
		return model.Credential{}, err
	}

	credential, ok := credentials[name]
	if !ok {
		return model.Credential{}, fmt.Errorf("%w: %s", model.ErrCredentialNotFound, name)
	}

	return credential, nil
}

func (s *FileCredentialStore) read() (map[string]model.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	return parseCredentials(data)
}

func parseCredentials(data []byte) (map[string]model.Credential, error) {
	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}

	credentials := make(map[string]model.Credential, len(file.Credentials))

	for i, credential := range file.Credentials {
		if credential.Name == "" {
			return nil, fmt.Errorf("credential %d has no name", i)
		}

		if _, exists := credentials[credential.Name]; exists {
			return nil, fmt.Errorf("credential %q defined twice", credential.Name)
		}

		credential.Host = strings.TrimRight(credential.Host, "/")
		credentials[credential.Name] = credential
	}

	return credentials, nil
}
