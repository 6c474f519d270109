package introspect

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/goliatone/go-entityform/pkg/meta"
)

var (
	ErrNotStruct        = errors.New("introspect: not a struct")
	ErrNotAddressable   = errors.New("introspect: record not addressable")
	ErrPropertyNotFound = errors.New("introspect: property not found")
	ErrTypeMismatch     = errors.New("introspect: type mismatch")
)

// Option customises extraction.
type Option func(*options)

type options struct {
	tagKey      string
	sortByOrder bool
}

// WithTagKey reads metadata from a struct tag other than "meta".
func WithTagKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.tagKey = key
		}
	}
}

// WithSortByOrder orders properties by their Order value. Ties keep discovery
// order.
func WithSortByOrder() Option {
	return func(o *options) {
		o.sortByOrder = true
	}
}

func newOptions(opts []Option) options {
	o := options{tagKey: meta.DefaultTagKey}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Extract returns every bindable property of t. A property is bindable when
// its field carries the metadata tag and is not hidden. Own fields come first
// followed by the fields of embedded structs, depth first.
func Extract(t reflect.Type, opts ...Option) ([]Property, error) {
	o := newOptions(opts)
	props, err := discover(t, o)
	if err != nil {
		return nil, err
	}
	bindable := props[:0]
	for _, prop := range props {
		if prop.Descriptor.Hidden {
			continue
		}
		bindable = append(bindable, prop)
	}
	if o.sortByOrder {
		sort.SliceStable(bindable, func(i, j int) bool {
			return bindable[i].Descriptor.Order < bindable[j].Descriptor.Order
		})
	}
	return bindable, nil
}

// ExtractNamed returns the properties listed in names, in that order. Any
// name that does not resolve to a bindable property is an error. Repeated
// names are returned once.
func ExtractNamed(t reflect.Type, names []string, opts ...Option) ([]Property, error) {
	all, err := Extract(t, opts...)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Property, len(all))
	for _, prop := range all {
		byName[prop.Name] = prop
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]Property, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		prop, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q on %s", ErrPropertyNotFound, name, indirect(t))
		}
		seen[name] = struct{}{}
		out = append(out, prop)
	}
	return out, nil
}

// Lookup returns a single bindable property by name.
func Lookup(t reflect.Type, name string, opts ...Option) (Property, error) {
	props, err := ExtractNamed(t, []string{name}, opts...)
	if err != nil {
		return Property{}, err
	}
	return props[0], nil
}

func discover(t reflect.Type, o options) ([]Property, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNotStruct)
	}
	root := indirect(t)
	if root.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	var found []Property
	if err := walk(root, root, nil, 0, o, &found, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}

	// keep the shallowest declaration of each name
	best := make(map[string]int, len(found))
	for i, prop := range found {
		if j, ok := best[prop.Name]; !ok || prop.depth < found[j].depth {
			best[prop.Name] = i
		}
	}
	out := make([]Property, 0, len(best))
	for i, prop := range found {
		if best[prop.Name] == i {
			out = append(out, prop)
		}
	}
	return out, nil
}

func walk(root, current reflect.Type, prefix []int, depth int, o options, out *[]Property, visiting map[reflect.Type]bool) error {
	if visiting[current] {
		return nil
	}
	visiting[current] = true
	defer delete(visiting, current)

	var embedded []reflect.StructField
	for i := 0; i < current.NumField(); i++ {
		field := current.Field(i)
		if field.Anonymous && isEmbeddable(field) {
			embedded = append(embedded, field)
			continue
		}
		if !field.IsExported() {
			continue
		}
		desc, tagged, err := meta.FromField(field, o.tagKey)
		if err != nil {
			return fmt.Errorf("introspect: %s: %w", root, err)
		}
		if !tagged {
			continue
		}
		kind := Classify(field.Type, desc.Temporal)
		*out = append(*out, Property{
			Name:       desc.FieldName,
			Index:      appendIndex(prefix, i),
			Type:       field.Type,
			Kind:       kind,
			Elem:       ElemType(field.Type, kind),
			Owner:      root,
			Descriptor: desc,
			depth:      depth,
		})
	}

	for _, field := range embedded {
		if err := walk(root, indirect(field.Type), appendIndex(prefix, field.Index[0]), depth+1, o, out, visiting); err != nil {
			return err
		}
	}
	return nil
}

// isEmbeddable reports whether an anonymous field is walked as a supertype.
// Unexported pointer embeds cannot be allocated through reflection and are
// skipped, as are value types the engine treats as scalars.
func isEmbeddable(field reflect.StructField) bool {
	t := field.Type
	if t.Kind() == reflect.Pointer {
		if !field.IsExported() {
			return false
		}
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	return t != timeType && t != decimalType
}

func appendIndex(prefix []int, i int) []int {
	out := make([]int, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = i
	return out
}
