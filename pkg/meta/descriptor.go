package meta

import (
	"math"
	"reflect"
	"strings"
)

// Defaults applied to every descriptor before the tag is parsed.
const (
	DefaultOrder              = 999
	DefaultMaxLength          = 255
	DefaultDataProviderMethod = "list"
)

// Temporal hints narrow how a time.Time property is edited.
const (
	TemporalDateTime = "datetime"
	TemporalDate     = "date"
	TemporalTime     = "time"
)

// Descriptor is the resolved metadata of a single property. Descriptors are
// values: once Parse returns one it is never mutated by the engine.
type Descriptor struct {
	FieldName   string
	FieldType   reflect.Type
	DisplayName string
	Description string
	Order       int

	Required bool
	ReadOnly bool
	Hidden   bool

	DefaultValue string
	MaxLength    int
	// Min defaults to the most negative representable float64.
	Min         float64
	Max         float64
	Placeholder string
	Width       string
	Temporal    string

	ColorField          bool
	UseIcon             bool
	UseRadioButtons     bool
	PasswordField       bool
	PasswordReveal      bool
	ImageData           bool
	UseGridSelection    bool
	UseDualListSelector bool
	AllowCustomValue    bool
	ClearOnEmptyData    bool
	AutoSelectFirst     bool
	ComboboxReadOnly    bool

	CreateComponentMethod string

	DataProviderBean        Target
	DataProviderMethod      string
	DataProviderParamBean   Target
	DataProviderParamMethod string
}

// NewDescriptor returns a descriptor populated with the engine defaults.
func NewDescriptor(fieldName string, fieldType reflect.Type) Descriptor {
	return Descriptor{
		FieldName:          fieldName,
		FieldType:          fieldType,
		DisplayName:        DefaultLabeler(fieldName),
		Order:              DefaultOrder,
		MaxLength:          DefaultMaxLength,
		Min:                -math.MaxFloat64,
		Max:                math.MaxFloat64,
		DataProviderMethod: DefaultDataProviderMethod,
		Temporal:           TemporalDateTime,
	}
}

// HasDataSource reports whether a data provider is configured. The "none"
// sentinel counts as no data source.
func (d Descriptor) HasDataSource() bool {
	return d.DataProviderBean.IsSet() && !d.DataProviderBean.IsNone()
}

// HasParam reports whether a parameter indirection is configured.
func (d Descriptor) HasParam() bool {
	return strings.TrimSpace(d.DataProviderParamMethod) != ""
}

// HasCustomComponent reports whether the custom construction escape hatch is
// configured.
func (d Descriptor) HasCustomComponent() bool {
	return d.CustomComponentMethod() != ""
}

// CustomComponentMethod returns the first configured construction method.
// Several names may be listed separated by commas; only the first is used.
func (d Descriptor) CustomComponentMethod() string {
	raw := strings.TrimSpace(d.CreateComponentMethod)
	if raw == "" {
		return ""
	}
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}

// String is used in log fields and error messages.
func (d Descriptor) String() string {
	if d.DisplayName == "" || d.DisplayName == d.FieldName {
		return d.FieldName
	}
	return d.DisplayName + " (" + d.FieldName + ")"
}

// Enumeration is implemented by named types that behave as closed enums. The
// returned slice lists every enumerant in declaration order.
type Enumeration interface {
	Enumerants() []any
}

// Entity is implemented by referencable domain objects. Properties whose type
// implements Entity are edited through a searchable choice widget.
type Entity interface {
	EntityID() string
	EntityLabel() string
}

var (
	enumerationType = reflect.TypeOf((*Enumeration)(nil)).Elem()
	entityType      = reflect.TypeOf((*Entity)(nil)).Elem()
)

// IsEnumeration reports whether values of t enumerate their own domain.
func IsEnumeration(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return t.Implements(enumerationType)
}

// Enumerants returns the enumerants declared by t, or nil when t is not an
// Enumeration.
func Enumerants(t reflect.Type) []any {
	if !IsEnumeration(t) {
		return nil
	}
	zero := reflect.Zero(t)
	if t.Kind() == reflect.Pointer {
		zero = reflect.New(t.Elem())
	}
	enum, ok := zero.Interface().(Enumeration)
	if !ok {
		return nil
	}
	return append([]any(nil), enum.Enumerants()...)
}

// IsEntity reports whether t, or a pointer to t, implements Entity.
func IsEntity(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(entityType) {
		return true
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(entityType) {
		return true
	}
	return false
}

// ServiceNameFor derives the conventional data provider name for an entity
// type: "Activity" becomes "activityService".
func ServiceNameFor(t reflect.Type) string {
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return ""
	}
	name := t.Name()
	return strings.ToLower(name[:1]) + name[1:] + "Service"
}
