package model

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Router is a Model that forwards each request to the provider named in
// Request.Provider, falling back to the default provider when empty.
type Router struct {
	mu        sync.RWMutex
	providers map[string]Model
	fallback  string
}

// NewRouter creates a Router whose empty-provider requests go to fallback.
func NewRouter(fallback string) *Router {
	return &Router{providers: map[string]Model{}, fallback: fallback}
}

// Register adds or replaces the model serving a provider name.
func (r *Router) Register(provider string, m Model) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[provider] = m

	return r
}

// Providers returns the registered provider names in sorted order.
func (r *Router) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

func (r *Router) route(provider string) (Model, error) {
	if provider == "" {
		provider = r.fallback
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("model: no provider %q registered", provider)
	}

	return m, nil
}

// Generate implements Model.
func (r *Router) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	m, err := r.route(req.Provider)
	if err != nil {
		respCh := make(chan Response)
		errCh := make(chan error, 1)

		close(respCh)
		errCh <- err
		close(errCh)

		return respCh, errCh
	}

	return m.Generate(ctx, req)
}

// Info implements Model.
func (r *Router) Info() Info {
	return Info{Name: "router", Provider: r.fallback}
}

// Ping checks every registered provider that implements Pinger concurrently
// and returns the first failure.
func (r *Router) Ping(ctx context.Context) error {
	r.mu.RLock()
	providers := make(map[string]Model, len(r.providers))

	for name, m := range r.providers {
		providers[name] = m
	}
	r.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)

	for name, m := range providers {
		p, ok := m.(Pinger)
		if !ok {
			continue
		}

		g.Go(func() error {
			if err := p.Ping(gctx); err != nil {
				return fmt.Errorf("provider %s: %w", name, err)
			}

			return nil
		})
	}

	return g.Wait()
}
