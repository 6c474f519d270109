package provider

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	ErrServiceNotFound = errors.New("provider: service not found")
	ErrServiceType     = errors.New("provider: service has unexpected type")
)

// Services resolves data provider objects by name. Registry is the default
// implementation; applications with their own container can adapt it.
type Services interface {
	Lookup(name string) (any, error)
	Names() []string
}

// Registry stores services by name. Names are matched case-sensitively after
// trimming surrounding whitespace.
type Registry struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]any),
	}
}

// Register adds a service under name. Duplicate names return an error.
func (r *Registry) Register(name string, service any) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return fmt.Errorf("provider: service name is required")
	}
	if service == nil {
		return fmt.Errorf("provider: service %q is nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[key]; exists {
		return fmt.Errorf("provider: service %q already registered", key)
	}
	r.services[key] = service
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, service any) {
	if err := r.Register(name, service); err != nil {
		panic(err)
	}
}

// Lookup retrieves a service by name.
func (r *Registry) Lookup(name string) (any, error) {
	key := strings.TrimSpace(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	service, ok := r.services[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotFound, key)
	}
	return service, nil
}

// Has reports whether a service is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.services[strings.TrimSpace(name)]
	return ok
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupAs retrieves a service and asserts its type. A registered service of
// another type yields ErrServiceType rather than ErrServiceNotFound.
func LookupAs[T any](services Services, name string) (T, error) {
	var zero T
	if services == nil {
		return zero, fmt.Errorf("%w: %q (no services configured)", ErrServiceNotFound, name)
	}
	raw, err := services.Lookup(name)
	if err != nil {
		return zero, err
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, want %s", ErrServiceType, name, raw, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}
