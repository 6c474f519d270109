package widgets

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/google/uuid"
)

var (
	ErrInvalidValue = errors.New("widgets: invalid value")
	ErrRequired     = errors.New("widgets: value required")
)

// Input is the built-in Widget implementation. Presentation fields are
// exported so UI layers can render them; the value is only reachable through
// the Widget methods.
type Input struct {
	Name        string
	Label       string
	Description string
	Placeholder string
	ClassName   string

	ReadOnly         bool
	Required         bool
	AllowCustomValue bool
	PasswordReveal   bool

	Width     string
	MinWidth  string
	MaxWidth  string
	FullWidth bool

	Step      float64
	Min       float64
	Max       float64
	MaxLength int

	Items []Item
	// Closed restricts single and multi values to the values of Items.
	Closed           bool
	AutoSelectFirst  bool
	ClearOnEmptyData bool
	// Loader refreshes Items from the data provider when set.
	Loader func() ([]Item, error)
	// Default is restored by Clear.
	Default any

	id        string
	kind      Kind
	value     any
	listeners map[int]func(any)
	nextID    int
}

// NewInput creates an input of the given kind holding its zero value.
func NewInput(kind Kind, name string) *Input {
	in := &Input{
		Name:      name,
		Label:     meta.DefaultLabeler(name),
		Min:       -math.MaxFloat64,
		Max:       math.MaxFloat64,
		id:        uuid.NewString(),
		kind:      kind,
		listeners: make(map[int]func(any)),
	}
	in.value = in.zero()
	return in
}

// ID implements Widget.
func (in *Input) ID() string { return in.id }

// SetID overrides the generated identifier.
func (in *Input) SetID(id string) {
	if id != "" {
		in.id = id
	}
}

// Kind implements Widget.
func (in *Input) Kind() Kind { return in.kind }

// ValueType implements Typed.
func (in *Input) ValueType() reflect.Type { return NativeType(in.kind) }

// Value implements Widget.
func (in *Input) Value() any {
	if list, ok := in.value.([]any); ok {
		return append([]any{}, list...)
	}
	return in.value
}

// SetValue implements Widget. The value must match the native type of the
// kind; nil stores the zero value. Listeners run only when the value changes.
func (in *Input) SetValue(value any) error {
	normalized, err := in.normalize(value)
	if err != nil {
		return err
	}
	if in.Closed && !in.allowed(normalized) {
		return fmt.Errorf("%w: %q does not offer %v", ErrInvalidValue, in.Name, value)
	}
	in.store(normalized)
	return nil
}

// Clear implements Widget. The configured default is restored, or the zero
// value when none is set.
func (in *Input) Clear() {
	if in.Default != nil {
		if normalized, err := in.normalize(in.Default); err == nil {
			in.store(normalized)
			return
		}
	}
	in.store(in.zero())
}

// OnChange implements Widget.
func (in *Input) OnChange(fn func(value any)) func() {
	if fn == nil {
		return func() {}
	}
	id := in.nextID
	in.nextID++
	in.listeners[id] = fn
	return func() { delete(in.listeners, id) }
}

// SetItems replaces the offered items. An empty list clears the value when
// ClearOnEmptyData is set; a non-empty list selects the first item when
// AutoSelectFirst is set and nothing is selected yet.
func (in *Input) SetItems(items []Item) {
	in.Items = append([]Item(nil), items...)
	switch {
	case len(in.Items) == 0 && in.ClearOnEmptyData:
		in.store(in.zero())
	case len(in.Items) > 0 && in.AutoSelectFirst && in.empty(in.value):
		in.SelectFirst()
	}
}

// Reload fetches fresh items through Loader.
func (in *Input) Reload() error {
	if in.Loader == nil {
		return nil
	}
	items, err := in.Loader()
	if err != nil {
		return err
	}
	in.SetItems(items)
	return nil
}

// SelectFirst selects the first item of a choice widget. It reports whether an
// item was selected.
func (in *Input) SelectFirst() bool {
	if !in.kind.IsChoice() || len(in.Items) == 0 {
		return false
	}
	in.store(in.Items[0].Value)
	return true
}

// ItemByLabel finds the item with the given label or printed value.
func (in *Input) ItemByLabel(label string) (Item, bool) {
	for _, item := range in.Items {
		if item.Label == label || fmt.Sprint(item.Value) == label {
			return item, true
		}
	}
	return Item{}, false
}

// Validate checks the current value against the presentation constraints.
func (in *Input) Validate() error {
	if in.Required && in.empty(in.value) && in.kind != KindCheckbox {
		return fmt.Errorf("%w: %q", ErrRequired, in.Name)
	}
	switch v := in.value.(type) {
	case string:
		if in.MaxLength > 0 && utf8.RuneCountInString(v) > in.MaxLength {
			return fmt.Errorf("%w: %q longer than %d characters", ErrInvalidValue, in.Name, in.MaxLength)
		}
	case float64:
		if v < in.Min || v > in.Max {
			return fmt.Errorf("%w: %q outside [%v, %v]", ErrInvalidValue, in.Name, in.Min, in.Max)
		}
	}
	return nil
}

func (in *Input) store(value any) {
	if sameValue(in.value, value) {
		return
	}
	in.value = value
	ids := make([]int, 0, len(in.listeners))
	for id := range in.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := in.listeners[id]; ok {
			fn(in.Value())
		}
	}
}

func (in *Input) zero() any {
	switch {
	case in.kind.IsTextual():
		return ""
	case in.kind.IsMulti():
		return []any{}
	}
	switch in.kind {
	case KindCheckbox:
		return false
	case KindDate, KindTime, KindDateTime:
		return time.Time{}
	}
	return nil
}

func (in *Input) normalize(value any) (any, error) {
	if value == nil {
		return in.zero(), nil
	}
	native := NativeType(in.kind)
	if native == nil {
		return value, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type() == native {
		if list, ok := value.([]any); ok {
			return append([]any{}, list...), nil
		}
		return value, nil
	}
	if in.kind == KindNumber && rv.CanConvert(native) && isNumber(rv.Kind()) {
		return rv.Convert(native).Interface(), nil
	}
	return nil, fmt.Errorf("%w: %q (%s) expects %s, got %T", ErrInvalidValue, in.Name, in.kind, native, value)
}

func (in *Input) allowed(value any) bool {
	if isZero(value) {
		return true
	}
	if list, ok := value.([]any); ok {
		for _, element := range list {
			if !in.offers(element) {
				return false
			}
		}
		return true
	}
	return in.offers(value)
}

// empty reports a zero value that is not one of the offered items, so an
// enumerant declared as the zero value still counts as a selection.
func (in *Input) empty(value any) bool {
	return isZero(value) && !(value != nil && in.offers(value))
}

func (in *Input) offers(value any) bool {
	for _, item := range in.Items {
		if sameValue(item.Value, value) {
			return true
		}
	}
	return false
}

// sameValue compares widget values. Entities compare by identifier.
func sameValue(a, b any) bool {
	if ea, ok := a.(meta.Entity); ok && !isNilValue(a) {
		if eb, ok := b.(meta.Entity); ok && !isNilValue(b) {
			return ea.EntityID() == eb.EntityID()
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return reflect.DeepEqual(a, b)
}

func isZero(value any) bool {
	if isNilValue(value) {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []byte:
		return len(v) == 0
	case time.Time:
		return v.IsZero()
	case bool:
		return !v
	}
	rv := reflect.ValueOf(value)
	if rv.Type().PkgPath() == "" {
		return false
	}
	// named types such as a string or int enum
	return rv.IsZero()
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
