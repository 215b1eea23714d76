// Package core defines the Registry of resource providers used by Engine.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrProviderNotFound  = errors.New("no provider registered for resource")
	ErrDuplicateProvider = errors.New("provider already registered for resource")
)

// Provider acquires one resource. The returned release func is what the
// engine arms its scope guard with; it must be safe to call exactly once.
// A nil release means the resource needs no cleanup; the engine arms a
// no-op in its place, so the acquisition is still traced and its value
// still reaches the session.
type Provider interface {
	Acquire(ctx context.Context) (value any, release func() error, err error)
}

// ProviderFunc adapts a closure to Provider.
type ProviderFunc func(ctx context.Context) (any, func() error, error)

func (f ProviderFunc) Acquire(ctx context.Context) (any, func() error, error) {
	return f(ctx)
}

// Registry maps resource IDs to Providers. Thread-safe.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register binds a provider to a resource ID.
func (r *Registry) Register(id string, p Provider) error {
	if id == "" {
		return errors.New("resource ID is required")
	}
	if p == nil {
		return fmt.Errorf("nil provider for resource %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, id)
	}
	r.providers[id] = p
	return nil
}

// RegisterFunc binds a closure provider to a resource ID.
func (r *Registry) RegisterFunc(id string, f ProviderFunc) error {
	return r.Register(id, f)
}

// Lookup returns the provider for id.
func (r *Registry) Lookup(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}
