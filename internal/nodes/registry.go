package nodes

import (
	"fmt"
	"slices"
	"sync"

	"github.com/architeacher/connectors/internal/domain/model"
)

type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

func NewRegistry(nodes ...Node) (*Registry, error) {
	registry := &Registry{nodes: make(map[string]Node, len(nodes))}

	for _, node := range nodes {
		if err := registry.Register(node); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func (r *Registry) Register(node Node) error {
	name := node.Schema().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[name]; exists {
		return fmt.Errorf("node %q already registered", name)
	}

	r.nodes[name] = node

	return nil
}

func (r *Registry) Get(name string) (Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownNode, name)
	}

	return node, nil
}

// Names returns the registered node names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
