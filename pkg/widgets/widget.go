package widgets

import (
	"reflect"
	"time"

	"github.com/goliatone/go-entityform/pkg/provider"
)

// Kind names a widget family. The value doubles as the structural class tag
// suffix ("form-field-<kind>").
type Kind string

const (
	KindText        Kind = "text"
	KindTextArea    Kind = "textarea"
	KindPassword    Kind = "password"
	KindColor       Kind = "color"
	KindIcon        Kind = "icon"
	KindNumber      Kind = "number"
	KindCheckbox    Kind = "checkbox"
	KindDate        Kind = "date"
	KindTime        Kind = "time"
	KindDateTime    Kind = "datetime"
	KindCombobox    Kind = "combobox"
	KindSelect      Kind = "select"
	KindRadioGroup  Kind = "radio-group"
	KindMultiSelect Kind = "multi-select"
	KindGridSelect  Kind = "grid-select"
	KindDualList    Kind = "dual-list"
	KindImage       Kind = "image"
	KindCustom      Kind = "custom"
	KindForm        Kind = "form"
)

// IsChoice reports whether the kind selects a single value from items.
func (k Kind) IsChoice() bool {
	switch k {
	case KindCombobox, KindSelect, KindRadioGroup, KindIcon:
		return true
	}
	return false
}

// IsMulti reports whether the kind selects many values from items.
func (k Kind) IsMulti() bool {
	switch k {
	case KindMultiSelect, KindGridSelect, KindDualList:
		return true
	}
	return false
}

// IsTextual reports whether the kind edits a string.
func (k Kind) IsTextual() bool {
	switch k {
	case KindText, KindTextArea, KindPassword, KindColor:
		return true
	}
	return false
}

// Widget is a headless input control. A UI layer renders it and forwards user
// edits through SetValue; the binder listens through OnChange.
type Widget interface {
	ID() string
	Kind() Kind
	Value() any
	SetValue(value any) error
	Clear()
	OnChange(fn func(value any)) (remove func())
}

// Typed is implemented by widgets with a fixed native value type. A nil type
// means any value is accepted.
type Typed interface {
	ValueType() reflect.Type
}

// OwnerAware widgets receive the content owner of the form they are placed in.
type OwnerAware interface {
	SetContentOwner(owner provider.ContentOwner)
}

// Item is one entry offered by a choice or multi-choice widget.
type Item struct {
	Label string
	Value any
	Icon  string
}

var (
	stringType = reflect.TypeOf("")
	floatType  = reflect.TypeOf(float64(0))
	boolType   = reflect.TypeOf(false)
	timeType   = reflect.TypeOf(time.Time{})
	listType   = reflect.TypeOf([]any(nil))
	bytesType  = reflect.TypeOf([]byte(nil))
)

// NativeType returns the value type widgets of kind k hold, nil for kinds that
// accept any value.
func NativeType(k Kind) reflect.Type {
	switch {
	case k.IsTextual():
		return stringType
	case k.IsMulti():
		return listType
	}
	switch k {
	case KindNumber:
		return floatType
	case KindCheckbox:
		return boolType
	case KindDate, KindTime, KindDateTime:
		return timeType
	case KindImage:
		return bytesType
	}
	return nil
}
