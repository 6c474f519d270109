package binding

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"github.com/shopspring/decimal"
)

var (
	ErrConversion  = errors.New("binding: conversion failed")
	ErrNoConverter = errors.New("binding: no converter for widget")
)

// Converter translates between a property's storage type and the native value
// of the widget bound to it.
type Converter interface {
	ToWidget(model any) (any, error)
	ToModel(widget any) (any, error)
}

// ConverterFuncs adapts a pair of functions to Converter.
type ConverterFuncs struct {
	Widget func(model any) (any, error)
	Model  func(widget any) (any, error)
}

func (c ConverterFuncs) ToWidget(model any) (any, error) { return c.Widget(model) }
func (c ConverterFuncs) ToModel(widget any) (any, error) { return c.Model(widget) }

var (
	anyList    = reflect.TypeOf([]any(nil))
	stringType = reflect.TypeOf("")
)

// float64 bounds of the 64 bit integer ranges; MaxInt64 and MaxUint64 round
// up to these when converted.
var (
	twoTo63 = math.Exp2(63)
	twoTo64 = math.Exp2(64)
)

// ConverterFor picks the converter needed to bind a widget of kind to prop. A
// nil converter with a nil error means the values are directly compatible.
func ConverterFor(prop introspect.Property, kind widgets.Kind) (Converter, error) {
	if kind == widgets.KindCustom || kind == widgets.KindForm {
		return nil, nil
	}
	t := prop.Type
	if t.Kind() == reflect.Pointer && prop.Kind != introspect.KindReference && !pointerEnum(t) {
		inner, err := converterForType(t.Elem(), prop.Kind, kind)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			inner = Identity(t.Elem())
		}
		return Pointer(t, inner), nil
	}
	return converterForType(t, prop.Kind, kind)
}

func converterForType(t reflect.Type, propKind introspect.Kind, kind widgets.Kind) (Converter, error) {
	switch {
	case kind == widgets.KindNumber:
		switch propKind {
		case introspect.KindInteger:
			return Integer(t), nil
		case introspect.KindFloat:
			return Float(t), nil
		case introspect.KindDecimal:
			return Decimal(), nil
		}
	case kind.IsMulti():
		switch propKind {
		case introspect.KindSet:
			return Set(t), nil
		case introspect.KindList:
			return List(t), nil
		}
	case propKind == introspect.KindText && (kind.IsTextual() || kind.IsChoice()):
		if t == stringType {
			return nil, nil
		}
		return Convert(t, stringType), nil
	case propKind == introspect.KindEnum && kind == widgets.KindIcon:
		return Enum(t), nil
	case propKind == introspect.KindReference && kind.IsChoice():
		return Reference(t), nil
	default:
		native := widgets.NativeType(kind)
		if native == nil || native == t {
			return nil, nil
		}
		if t.ConvertibleTo(native) && native.ConvertibleTo(t) {
			return Convert(t, native), nil
		}
	}
	return nil, fmt.Errorf("%w: %s cannot hold %s", ErrNoConverter, kind, t)
}

// pointerEnum reports whether only the pointer type enumerates, so values are
// the pointers themselves.
func pointerEnum(t reflect.Type) bool {
	return meta.IsEnumeration(t) && !meta.IsEnumeration(t.Elem())
}

// Enum converts between an enumeration and the string names an icon widget
// offers. Widget strings are matched against the printed enumerants.
func Enum(t reflect.Type) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			if isNil(model) {
				return "", nil
			}
			if reflect.ValueOf(model).IsZero() {
				return "", nil
			}
			return fmt.Sprint(model), nil
		},
		Model: func(widget any) (any, error) {
			switch v := widget.(type) {
			case nil:
				return reflect.Zero(t).Interface(), nil
			case string:
				if v == "" {
					return reflect.Zero(t).Interface(), nil
				}
				for _, enumerant := range meta.Enumerants(t) {
					if fmt.Sprint(enumerant) == v {
						return toType(enumerant, t)
					}
				}
				return nil, fmt.Errorf("%w: %q is not a %s", ErrConversion, v, t)
			}
			return toType(widget, t)
		},
	}
}

// Identity passes values through, converting widget values that are
// convertible but not assignable to t.
func Identity(t reflect.Type) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) { return model, nil },
		Model: func(widget any) (any, error) {
			return toType(widget, t)
		},
	}
}

// Convert maps t to the widget's native type and back with reflect
// conversions, e.g. a named string type edited through a text field.
func Convert(t, native reflect.Type) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			if model == nil {
				return nil, nil
			}
			return toType(model, native)
		},
		Model: func(widget any) (any, error) {
			return toType(widget, t)
		},
	}
}

// Integer converts between an integer kind and float64.
func Integer(t reflect.Type) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			if model == nil {
				return nil, nil
			}
			rv := reflect.ValueOf(model)
			switch rv.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return float64(rv.Int()), nil
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				return float64(rv.Uint()), nil
			}
			return nil, fmt.Errorf("%w: %T is not an integer", ErrConversion, model)
		},
		Model: func(widget any) (any, error) {
			out := reflect.New(t).Elem()
			if widget == nil {
				return out.Interface(), nil
			}
			f, ok := widget.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not a number", ErrConversion, widget)
			}
			rounded := math.Round(f)
			switch t.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				if rounded >= twoTo63 || rounded < -twoTo63 || out.OverflowInt(int64(rounded)) {
					return nil, fmt.Errorf("%w: %v overflows %s", ErrConversion, f, t)
				}
				out.SetInt(int64(rounded))
			default:
				if rounded < 0 || rounded >= twoTo64 || out.OverflowUint(uint64(rounded)) {
					return nil, fmt.Errorf("%w: %v overflows %s", ErrConversion, f, t)
				}
				out.SetUint(uint64(rounded))
			}
			return out.Interface(), nil
		},
	}
}

// Float converts between float32 or float64 and float64.
func Float(t reflect.Type) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			if model == nil {
				return nil, nil
			}
			rv := reflect.ValueOf(model)
			if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
				return nil, fmt.Errorf("%w: %T is not a float", ErrConversion, model)
			}
			return rv.Float(), nil
		},
		Model: func(widget any) (any, error) {
			out := reflect.New(t).Elem()
			if widget == nil {
				return out.Interface(), nil
			}
			f, ok := widget.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not a number", ErrConversion, widget)
			}
			if out.OverflowFloat(f) {
				return nil, fmt.Errorf("%w: %v overflows %s", ErrConversion, f, t)
			}
			out.SetFloat(f)
			return out.Interface(), nil
		},
	}
}

// Decimal converts between decimal.Decimal and float64. Values survive a round
// trip within the 0.01 step of decimal inputs.
func Decimal() Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			switch v := model.(type) {
			case nil:
				return nil, nil
			case decimal.Decimal:
				return v.InexactFloat64(), nil
			case *decimal.Decimal:
				if v == nil {
					return nil, nil
				}
				return v.InexactFloat64(), nil
			}
			return nil, fmt.Errorf("%w: %T is not a decimal", ErrConversion, model)
		},
		Model: func(widget any) (any, error) {
			switch v := widget.(type) {
			case nil:
				return decimal.Zero, nil
			case float64:
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("%w: %v is not a finite number", ErrConversion, v)
				}
				return decimal.NewFromFloat(v), nil
			}
			return nil, fmt.Errorf("%w: %T is not a number", ErrConversion, widget)
		},
	}
}

// Set converts between a set map and []any. Elements are ordered by their
// printed form so widget values are deterministic.
func Set(t reflect.Type) Converter {
	boolSet := t.Elem().Kind() == reflect.Bool
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			out := []any{}
			if model == nil {
				return out, nil
			}
			rv := reflect.ValueOf(model)
			if rv.Kind() != reflect.Map {
				return nil, fmt.Errorf("%w: %T is not a set", ErrConversion, model)
			}
			iter := rv.MapRange()
			for iter.Next() {
				if boolSet && !iter.Value().Bool() {
					continue
				}
				out = append(out, iter.Key().Interface())
			}
			sort.SliceStable(out, func(i, j int) bool {
				return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
			})
			return out, nil
		},
		Model: func(widget any) (any, error) {
			list, err := asList(widget)
			if err != nil {
				return nil, err
			}
			out := reflect.MakeMapWithSize(t, len(list))
			member := reflect.New(t.Elem()).Elem()
			if boolSet {
				member.SetBool(true)
			}
			for _, element := range list {
				key, err := toType(element, t.Key())
				if err != nil {
					return nil, err
				}
				out.SetMapIndex(reflect.ValueOf(key), member)
			}
			return out.Interface(), nil
		},
	}
}

// List converts between a slice or array and []any.
func List(t reflect.Type) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			out := []any{}
			if model == nil {
				return out, nil
			}
			rv := reflect.ValueOf(model)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return nil, fmt.Errorf("%w: %T is not a list", ErrConversion, model)
			}
			for i := 0; i < rv.Len(); i++ {
				out = append(out, rv.Index(i).Interface())
			}
			return out, nil
		},
		Model: func(widget any) (any, error) {
			list, err := asList(widget)
			if err != nil {
				return nil, err
			}
			var out reflect.Value
			if t.Kind() == reflect.Array {
				if len(list) > t.Len() {
					return nil, fmt.Errorf("%w: %d values do not fit %s", ErrConversion, len(list), t)
				}
				out = reflect.New(t).Elem()
			} else {
				out = reflect.MakeSlice(t, len(list), len(list))
			}
			for i, element := range list {
				value, err := toType(element, t.Elem())
				if err != nil {
					return nil, err
				}
				out.Index(i).Set(reflect.ValueOf(value))
			}
			return out.Interface(), nil
		},
	}
}

// Reference passes entity references through, checking the type on the way
// back.
func Reference(t reflect.Type) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			if isNil(model) {
				return nil, nil
			}
			return model, nil
		},
		Model: func(widget any) (any, error) {
			return toType(widget, t)
		},
	}
}

// Pointer wraps the converter of an element type for a pointer property. A nil
// pointer shows as an empty widget and an empty widget stores nil.
func Pointer(t reflect.Type, inner Converter) Converter {
	return ConverterFuncs{
		Widget: func(model any) (any, error) {
			if isNil(model) {
				return inner.ToWidget(nil)
			}
			return inner.ToWidget(reflect.ValueOf(model).Elem().Interface())
		},
		Model: func(widget any) (any, error) {
			if widget == nil {
				return reflect.Zero(t).Interface(), nil
			}
			value, err := inner.ToModel(widget)
			if err != nil {
				return nil, err
			}
			ptr := reflect.New(t.Elem())
			if value != nil {
				ptr.Elem().Set(reflect.ValueOf(value))
			}
			return ptr.Interface(), nil
		},
	}
}

func asList(widget any) ([]any, error) {
	switch v := widget.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	}
	return nil, fmt.Errorf("%w: %T is not %s", ErrConversion, widget, anyList)
}

func toType(value any, t reflect.Type) (any, error) {
	if value == nil {
		return reflect.Zero(t).Interface(), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		if rv.Type() == t {
			return value, nil
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out.Interface(), nil
	}
	if sameFamily(rv.Type(), t) && rv.CanConvert(t) {
		return rv.Convert(t).Interface(), nil
	}
	return nil, fmt.Errorf("%w: %s is not assignable to %s", ErrConversion, rv.Type(), t)
}

// sameFamily limits reflect conversions to same-kind types so ints never turn
// into strings.
func sameFamily(a, b reflect.Type) bool {
	return a.Kind() == b.Kind()
}

func isNil(value any) bool {
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
