package introspect

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-entityform/pkg/meta"
)

// Property pairs an accessor for one struct field with its metadata.
// Properties are values and are rebuilt on every extraction.
type Property struct {
	Name       string
	Index      []int
	Type       reflect.Type
	Kind       Kind
	Elem       reflect.Type
	Owner      reflect.Type
	Descriptor meta.Descriptor

	depth int
}

// Get reads the property from record, which may be a struct or a pointer to
// one. A nil embedded pointer on the path yields the zero value.
func (p Property) Get(record any) (any, error) {
	v, err := p.field(record, false)
	if err != nil {
		return nil, err
	}
	if !v.IsValid() {
		return reflect.Zero(p.Type).Interface(), nil
	}
	return v.Interface(), nil
}

// Set assigns value to the property on record, which must be a non-nil
// pointer to a struct. Nil embedded pointers on the path are allocated. A nil
// value stores the zero value.
func (p Property) Set(record any, value any) error {
	v, err := p.field(record, true)
	if err != nil {
		return err
	}
	if value == nil {
		v.Set(reflect.Zero(p.Type))
		return nil
	}
	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(p.Type) {
		return fmt.Errorf("%w: property %q expects %s, got %s", ErrTypeMismatch, p.Name, p.Type, rv.Type())
	}
	v.Set(rv)
	return nil
}

func (p Property) field(record any, forWrite bool) (reflect.Value, error) {
	rv := reflect.ValueOf(record)
	if forWrite {
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: property %q needs a non-nil pointer, got %T", ErrNotAddressable, p.Name, record)
		}
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %s", ErrNotStruct, rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotStruct, rv.Type())
	}
	if p.Owner != nil && rv.Type() != p.Owner {
		return reflect.Value{}, fmt.Errorf("%w: property %q belongs to %s, got %s", ErrTypeMismatch, p.Name, p.Owner, rv.Type())
	}

	for i, idx := range p.Index {
		if i > 0 && rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				if !forWrite {
					return reflect.Value{}, nil
				}
				rv.Set(reflect.New(rv.Type().Elem()))
			}
			rv = rv.Elem()
		}
		rv = rv.Field(idx)
	}
	return rv, nil
}
