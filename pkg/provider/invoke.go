package provider

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

var (
	ErrMethodNotFound = errors.New("provider: method not found")
	ErrInvocation     = errors.New("provider: invocation failed")
	ErrArguments      = errors.New("provider: argument mismatch")
)

// Invoker is implemented by services that dispatch their own methods by name.
// Invoke prefers it over reflection.
type Invoker interface {
	Invoke(method string, args ...any) (any, error)
}

type methodKey struct {
	typ  reflect.Type
	name string
}

// methodCache maps (type, name) to a method index, -1 when absent.
var methodCache sync.Map

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoke calls method on target with args. The method name is matched as
// written and then with its first letter upper-cased, so tag values such as
// "listActive" reach ListActive. Methods may return nothing, a value, an
// error, or a value and an error.
func Invoke(target any, method string, args ...any) (result any, err error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", ErrInvocation)
	}
	name := strings.TrimSpace(method)
	if name == "" {
		return nil, fmt.Errorf("%w: empty method name", ErrMethodNotFound)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("%w: %T.%s panicked: %v", ErrInvocation, target, name, rec)
		}
	}()

	if invoker, ok := target.(Invoker); ok {
		out, callErr := invoker.Invoke(name, args...)
		if callErr != nil {
			if errors.Is(callErr, ErrMethodNotFound) || errors.Is(callErr, ErrArguments) {
				return nil, callErr
			}
			return nil, fmt.Errorf("%w: %T.%s: %w", ErrInvocation, target, name, callErr)
		}
		return out, nil
	}

	value := reflect.ValueOf(target)
	index := methodIndex(value.Type(), name)
	if index < 0 {
		return nil, fmt.Errorf("%w: %T has no method %q", ErrMethodNotFound, target, name)
	}
	fn := value.Method(index)

	in, err := arguments(fn.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("%w: %T.%s: %v", ErrArguments, target, name, err)
	}
	return results(fn.Call(in), target, name)
}

func methodIndex(t reflect.Type, name string) int {
	key := methodKey{typ: t, name: name}
	if cached, ok := methodCache.Load(key); ok {
		return cached.(int)
	}

	index := -1
	for _, candidate := range []string{name, exportedName(name)} {
		if m, ok := t.MethodByName(candidate); ok {
			index = m.Index
			break
		}
	}
	methodCache.Store(key, index)
	return index
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func arguments(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := fnType.NumIn()
	variadic := fnType.IsVariadic()
	if variadic {
		fixed--
	}
	if len(args) < fixed || (!variadic && len(args) > fixed) {
		return nil, fmt.Errorf("want %d argument(s), got %d", fnType.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var paramType reflect.Type
		if variadic && i >= fixed {
			paramType = fnType.In(fixed).Elem()
		} else {
			paramType = fnType.In(i)
		}
		v, err := argumentValue(arg, paramType)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func argumentValue(arg any, paramType reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch paramType.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(paramType), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", paramType)
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(paramType) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), paramType)
	}
	return v, nil
}

func results(out []reflect.Value, target any, name string) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			if err, _ := out[0].Interface().(error); err != nil {
				return nil, fmt.Errorf("%w: %T.%s: %w", ErrInvocation, target, name, err)
			}
			return nil, nil
		}
		return out[0].Interface(), nil
	case 2:
		if out[1].Type() != errorType {
			return nil, fmt.Errorf("%w: %T.%s: second result must be error", ErrInvocation, target, name)
		}
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, fmt.Errorf("%w: %T.%s: %w", ErrInvocation, target, name, err)
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("%w: %T.%s returns %d values", ErrInvocation, target, name, len(out))
	}
}
