package form

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-entityform/pkg/binding"
)

var (
	// ErrNilType is returned when Build receives no type.
	ErrNilType = errors.New("form: nil type")
	// ErrNoSource is returned when a nested form cannot find its record in the
	// parent record.
	ErrNoSource = errors.New("form: no source record")
)

// BuildError aborts a build. Property is empty when the failure is not tied
// to a single property.
type BuildError struct {
	Type     reflect.Type
	Property string
	Err      error
}

func (e *BuildError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("form: build %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("form: build %s: property %q: %v", e.Type, e.Property, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Notifier reports failures to the user.
type Notifier interface {
	Notify(property string, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(property string, err error)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(property string, err error) { fn(property, err) }

// lazyLoadErrors collects every lazy loading failure in err, including the
// branches of joined errors.
func lazyLoadErrors(err error) []*binding.LazyLoadError {
	if err == nil {
		return nil
	}
	if lazy, ok := err.(*binding.LazyLoadError); ok {
		return []*binding.LazyLoadError{lazy}
	}
	switch wrapped := err.(type) {
	case interface{ Unwrap() []error }:
		var out []*binding.LazyLoadError
		for _, inner := range wrapped.Unwrap() {
			out = append(out, lazyLoadErrors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return lazyLoadErrors(wrapped.Unwrap())
	}
	return nil
}
