package ports

import (
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
)

type (
	// NodeCatalog looks up registered nodes by name.
	NodeCatalog interface {
		Get(name string) (nodes.Node, error)
		Names() []string
	}

	// APIFactory builds the client a node talks to for one credential.
	APIFactory interface {
		For(credential model.Credential) nodes.API
	}
)

// APIFactoryFunc adapts a function to APIFactory.
type APIFactoryFunc func(credential model.Credential) nodes.API

func (f APIFactoryFunc) For(credential model.Credential) nodes.API {
	return f(credential)
}
