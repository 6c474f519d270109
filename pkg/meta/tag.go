package meta

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DefaultTagKey is the struct tag consulted when no other key is configured.
const DefaultTagKey = "meta"

// ErrInvalidTag is returned when a metadata tag cannot be parsed.
var ErrInvalidTag = errors.New("meta: invalid tag")

// TagError reports a malformed tag entry on a specific field.
type TagError struct {
	Field string
	Key   string
	Err   error
}

func (e *TagError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("meta: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("meta: field %q key %q: %v", e.Field, e.Key, e.Err)
}

func (e *TagError) Unwrap() error { return e.Err }

// FromField parses the descriptor attached to a struct field. The boolean
// result is false when the field carries no metadata tag at all.
func FromField(field reflect.StructField, tagKey string) (Descriptor, bool, error) {
	if tagKey == "" {
		tagKey = DefaultTagKey
	}
	raw, ok := field.Tag.Lookup(tagKey)
	if !ok {
		return Descriptor{}, false, nil
	}
	desc, err := Parse(PropertyName(field.Name), field.Type, raw)
	if err != nil {
		return Descriptor{}, true, err
	}
	return desc, true, nil
}

// Parse builds a descriptor for fieldName from a raw tag value.
func Parse(fieldName string, fieldType reflect.Type, raw string) (Descriptor, error) {
	desc := NewDescriptor(fieldName, fieldType)
	entries, err := splitEntries(raw)
	if err != nil {
		return Descriptor{}, &TagError{Field: fieldName, Err: err}
	}
	for _, entry := range entries {
		key, value, hasValue := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if err := apply(&desc, key, value, hasValue); err != nil {
			return Descriptor{}, &TagError{Field: desc.FieldName, Key: key, Err: err}
		}
	}
	return desc, nil
}

type setter func(d *Descriptor, value string, hasValue bool) error

var setters = map[string]setter{
	"name": stringSetter(func(d *Descriptor, v string) {
		if v != "" {
			d.FieldName = v
		}
	}),
	"displayName": stringSetter(func(d *Descriptor, v string) { d.DisplayName = SanitizeText(v) }),
	"description": stringSetter(func(d *Descriptor, v string) { d.Description = SanitizeText(v) }),
	"placeholder": stringSetter(func(d *Descriptor, v string) { d.Placeholder = SanitizeText(v) }),
	"defaultValue": stringSetter(func(d *Descriptor, v string) {
		d.DefaultValue = v
	}),
	"width": stringSetter(func(d *Descriptor, v string) { d.Width = v }),
	"temporal": func(d *Descriptor, v string, _ bool) error {
		switch strings.ToLower(v) {
		case TemporalDate, TemporalTime, TemporalDateTime:
			d.Temporal = strings.ToLower(v)
			return nil
		default:
			return fmt.Errorf("%w: unknown temporal hint %q", ErrInvalidTag, v)
		}
	},
	"order":     intSetter(func(d *Descriptor, v int) { d.Order = v }),
	"maxLength": intSetter(func(d *Descriptor, v int) { d.MaxLength = v }),
	"min":       floatSetter(func(d *Descriptor, v float64) { d.Min = v }),
	"max":       floatSetter(func(d *Descriptor, v float64) { d.Max = v }),

	"required":             boolSetter(func(d *Descriptor, v bool) { d.Required = v }),
	"readOnly":             boolSetter(func(d *Descriptor, v bool) { d.ReadOnly = v }),
	"hidden":               boolSetter(func(d *Descriptor, v bool) { d.Hidden = v }),
	"colorField":           boolSetter(func(d *Descriptor, v bool) { d.ColorField = v }),
	"useIcon":              boolSetter(func(d *Descriptor, v bool) { d.UseIcon = v }),
	"useRadioButtons":      boolSetter(func(d *Descriptor, v bool) { d.UseRadioButtons = v }),
	"passwordField":        boolSetter(func(d *Descriptor, v bool) { d.PasswordField = v }),
	"passwordRevealButton": boolSetter(func(d *Descriptor, v bool) { d.PasswordReveal = v }),
	"imageData":            boolSetter(func(d *Descriptor, v bool) { d.ImageData = v }),
	"useGridSelection":     boolSetter(func(d *Descriptor, v bool) { d.UseGridSelection = v }),
	"useDualListSelector":  boolSetter(func(d *Descriptor, v bool) { d.UseDualListSelector = v }),
	"allowCustomValue":     boolSetter(func(d *Descriptor, v bool) { d.AllowCustomValue = v }),
	"clearOnEmptyData":     boolSetter(func(d *Descriptor, v bool) { d.ClearOnEmptyData = v }),
	"autoSelectFirst":      boolSetter(func(d *Descriptor, v bool) { d.AutoSelectFirst = v }),
	"comboboxReadOnly":     boolSetter(func(d *Descriptor, v bool) { d.ComboboxReadOnly = v }),

	"createComponentMethod": stringSetter(func(d *Descriptor, v string) { d.CreateComponentMethod = v }),
	"dataProviderBean":      stringSetter(func(d *Descriptor, v string) { d.DataProviderBean = ParseTarget(v) }),
	"dataProviderMethod": stringSetter(func(d *Descriptor, v string) {
		if v != "" {
			d.DataProviderMethod = v
		}
	}),
	"dataProviderParamBean":   stringSetter(func(d *Descriptor, v string) { d.DataProviderParamBean = ParseTarget(v) }),
	"dataProviderParamMethod": stringSetter(func(d *Descriptor, v string) { d.DataProviderParamMethod = v }),
}

func apply(d *Descriptor, key, value string, hasValue bool) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown key", ErrInvalidTag)
	}
	return set(d, value, hasValue)
}

func stringSetter(fn func(*Descriptor, string)) setter {
	return func(d *Descriptor, value string, hasValue bool) error {
		if !hasValue {
			return fmt.Errorf("%w: value required", ErrInvalidTag)
		}
		fn(d, value)
		return nil
	}
}

func intSetter(fn func(*Descriptor, int)) setter {
	return func(d *Descriptor, value string, hasValue bool) error {
		if !hasValue {
			return fmt.Errorf("%w: value required", ErrInvalidTag)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTag, err)
		}
		fn(d, n)
		return nil
	}
}

func floatSetter(fn func(*Descriptor, float64)) setter {
	return func(d *Descriptor, value string, hasValue bool) error {
		if !hasValue {
			return fmt.Errorf("%w: value required", ErrInvalidTag)
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTag, err)
		}
		fn(d, f)
		return nil
	}
}

func boolSetter(fn func(*Descriptor, bool)) setter {
	return func(d *Descriptor, value string, hasValue bool) error {
		if !hasValue {
			fn(d, true)
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTag, err)
		}
		fn(d, b)
		return nil
	}
}

// splitEntries splits on ';' outside of single quotes.
func splitEntries(raw string) ([]string, error) {
	var (
		entries []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range raw {
		switch {
		case r == '\'':
			quoted = !quoted
			current.WriteRune(r)
		case r == ';' && !quoted:
			entries = append(entries, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidTag)
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		entries = append(entries, rest)
	}
	return entries, nil
}

func unquote(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") {
		return value[1 : len(value)-1]
	}
	return value
}
