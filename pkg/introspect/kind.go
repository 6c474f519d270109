package introspect

import (
	"reflect"
	"time"

	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/shopspring/decimal"
)

// Kind classifies a property type into the families the widget rules reason
// about.
type Kind uint8

const (
	KindOther Kind = iota
	KindText
	KindInteger
	KindFloat
	KindDecimal
	KindBool
	KindDate
	KindTime
	KindDateTime
	KindEnum
	KindBlob
	KindList
	KindSet
	KindReference
)

var kindNames = map[Kind]string{
	KindOther:     "other",
	KindText:      "text",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindDecimal:   "decimal",
	KindBool:      "bool",
	KindDate:      "date",
	KindTime:      "time",
	KindDateTime:  "datetime",
	KindEnum:      "enum",
	KindBlob:      "blob",
	KindList:      "list",
	KindSet:       "set",
	KindReference: "reference",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsCollection reports whether the kind holds many values.
func (k Kind) IsCollection() bool { return k == KindList || k == KindSet }

// IsTemporal reports whether the kind is backed by time.Time.
func (k Kind) IsTemporal() bool { return k == KindDate || k == KindTime || k == KindDateTime }

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// TimeType and DecimalType are exposed for converters that special-case them.
func TimeType() reflect.Type    { return timeType }
func DecimalType() reflect.Type { return decimalType }

// Classify maps t to a Kind. Pointers are classified by their element except
// for entity references. The temporal hint picks between date, time and
// datetime for time.Time values.
func Classify(t reflect.Type, temporal string) Kind {
	if t == nil {
		return KindOther
	}
	if meta.IsEntity(t) && indirect(t).Kind() == reflect.Struct {
		return KindReference
	}
	if meta.IsEnumeration(t) {
		return KindEnum
	}
	base := indirect(t)
	if base != t && meta.IsEnumeration(base) {
		return KindEnum
	}

	switch base {
	case decimalType:
		return KindDecimal
	case timeType:
		switch temporal {
		case meta.TemporalDate:
			return KindDate
		case meta.TemporalTime:
			return KindTime
		default:
			return KindDateTime
		}
	}

	switch base.Kind() {
	case reflect.String:
		return KindText
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBool
	case reflect.Slice:
		if base.Elem().Kind() == reflect.Uint8 {
			return KindBlob
		}
		return KindList
	case reflect.Array:
		return KindList
	case reflect.Map:
		if isSetValue(base.Elem()) {
			return KindSet
		}
	}
	return KindOther
}

// ElemType returns the element type of a list or set, nil otherwise.
func ElemType(t reflect.Type, kind Kind) reflect.Type {
	base := indirect(t)
	switch kind {
	case KindList:
		return base.Elem()
	case KindSet:
		return base.Key()
	}
	return nil
}

func isSetValue(t reflect.Type) bool {
	if t.Kind() == reflect.Bool {
		return true
	}
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
