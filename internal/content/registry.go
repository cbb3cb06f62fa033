// internal/content/registry.go
package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrProviderUnavailable is wrapped by every provider fetch failure.
var ErrProviderUnavailable = errors.New("content: provider unavailable")

// Provider produces one Item per Fetch for a single Kind.
type Provider interface {
	Kind() Kind
	Fetch(ctx context.Context) (Item, error)
}

// Registry maps kinds to providers.
// Registration happens at startup; lookups are safe at any time.
type Registry struct {
	mu        sync.RWMutex
	providers map[Kind]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[Kind]Provider)}
}

// Register adds p under its Kind. A second provider for the same kind is rejected.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return errors.New("content: nil provider")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.providers[p.Kind()]; dup {
		return fmt.Errorf("content: provider for %s already registered", p.Kind())
	}
	r.providers[p.Kind()] = p
	return nil
}

// Lookup returns the provider for k.
func (r *Registry) Lookup(k Kind) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[k]
	return p, ok
}

// Fetch calls the provider for k.
// Every failure, including a missing provider, wraps ErrProviderUnavailable.
func (r *Registry) Fetch(ctx context.Context, k Kind) (Item, error) {
	p, ok := r.Lookup(k)
	if !ok {
		return Item{}, fmt.Errorf("%w: no provider for %s", ErrProviderUnavailable, k)
	}

	it, err := p.Fetch(ctx)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, k, err)
	}
	if it.Kind == 0 {
		it.Kind = k
	}
	return it, nil
}
