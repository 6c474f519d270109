package binding

import (
	"errors"
	"fmt"
)

var (
	ErrLazyLoad     = errors.New("binding: lazy value not initialised")
	ErrBeanType     = errors.New("binding: bean has the wrong type")
	ErrDuplicate    = errors.New("binding: property already bound")
	ErrTypeMismatch = errors.New("binding: widget cannot hold property type")
)

// Lazy is implemented by property values that load their content on demand,
// such as proxies over records held by a persistence layer.
type Lazy interface {
	Initialized() bool
}

// BindError reports a failure to bind or push a single property.
type BindError struct {
	Property string
	Err      error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding: property %q: %v", e.Property, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// LazyLoadError is raised when a bean exposes a lazy value that was never
// loaded.
type LazyLoadError struct {
	Property string
	Type     string
	Err      error
}

func (e *LazyLoadError) Error() string {
	return fmt.Sprintf("binding: property %q (%s): %v", e.Property, e.Type, e.Err)
}

func (e *LazyLoadError) Unwrap() error { return e.Err }
