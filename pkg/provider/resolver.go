package provider

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goliatone/go-entityform/pkg/meta"
	"go.uber.org/zap"
)

var (
	ErrSentinelNone = errors.New("provider: data provider disabled with \"none\"")
	ErrNoOwner      = errors.New("provider: no content owner for \"context\"")
	ErrNilResult    = errors.New("provider: data provider returned nil")
	ErrResultType   = errors.New("provider: data provider returned a non-list result")
)

// DefaultSessionName is the registry name consulted for the "session" target
// when no session service was supplied directly.
const DefaultSessionName = "sessionService"

// ContentOwner is the screen-level context a form is built for. It resolves
// the "context" target and exposes the record currently being edited.
type ContentOwner interface {
	CurrentEntity() any
}

// ResolutionError wraps every failure raised while resolving a property's data
// provider.
type ResolutionError struct {
	Property string
	Target   string
	Method   string
	Err      error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "provider: property %q", e.Property)
	if e.Target != "" {
		fmt.Fprintf(&b, " bean %q", e.Target)
	}
	if e.Method != "" {
		fmt.Fprintf(&b, " method %q", e.Method)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Option configures a Resolver.
type Option func(*Resolver)

// WithServices sets the registry used for named targets.
func WithServices(services Services) Option {
	return func(r *Resolver) {
		r.services = services
	}
}

// WithSession supplies the session scoped service directly.
func WithSession(session any) Option {
	return func(r *Resolver) {
		r.session = session
	}
}

// WithSessionName changes the registry name used to find the session service.
func WithSessionName(name string) Option {
	return func(r *Resolver) {
		if strings.TrimSpace(name) != "" {
			r.sessionName = strings.TrimSpace(name)
		}
	}
}

// WithLogger attaches a logger. The default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver turns data provider metadata into runtime data by dispatching to
// named services. It holds no data between calls.
type Resolver struct {
	services    Services
	session     any
	sessionName string
	logger      *zap.Logger
}

// NewResolver constructs a resolver with the supplied options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		sessionName: DefaultSessionName,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.services == nil {
		r.services = NewRegistry()
	}
	return r
}

// Services exposes the configured registry.
func (r *Resolver) Services() Services { return r.services }

// ServiceNames lists every service reachable through a named target.
func (r *Resolver) ServiceNames() []string { return r.services.Names() }

// Target returns the object addressed by target.
func (r *Resolver) Target(target meta.Target, owner ContentOwner) (any, error) {
	switch target.Kind() {
	case meta.TargetNone:
		return nil, ErrSentinelNone
	case meta.TargetThis:
		return r, nil
	case meta.TargetContext:
		if isNil(owner) {
			return nil, ErrNoOwner
		}
		return owner, nil
	case meta.TargetSession:
		if r.session != nil {
			return r.session, nil
		}
		return r.services.Lookup(r.sessionName)
	case meta.TargetNamed:
		return r.services.Lookup(target.Name())
	default:
		return nil, fmt.Errorf("%w: no data provider configured", ErrServiceNotFound)
	}
}

// Call resolves target and invokes method on it.
func (r *Resolver) Call(target meta.Target, owner ContentOwner, method string, args ...any) (any, error) {
	obj, err := r.Target(target, owner)
	if err != nil {
		return nil, err
	}
	return Invoke(obj, method, args...)
}

// Resolve fetches the data configured on desc. When a parameter method is
// configured its result is passed to the data provider method; the "this"
// parameter method passes entity itself without consulting any service.
func (r *Resolver) Resolve(desc meta.Descriptor, owner ContentOwner, entity any) (any, error) {
	fail := func(target meta.Target, method string, err error) error {
		return &ResolutionError{Property: desc.FieldName, Target: target.String(), Method: method, Err: err}
	}

	primary := desc.DataProviderBean
	if primary.IsNone() {
		return nil, fail(primary, "", ErrSentinelNone)
	}
	method := desc.DataProviderMethod
	if method == "" {
		method = meta.DefaultDataProviderMethod
	}

	var args []any
	if desc.HasParam() {
		param, paramTarget, err := r.param(desc, owner, entity)
		if err != nil {
			return nil, fail(paramTarget, desc.DataProviderParamMethod, err)
		}
		args = append(args, param)
	}

	result, err := r.Call(primary, owner, method, args...)
	if err != nil {
		return nil, fail(primary, method, err)
	}
	if isNil(result) {
		return nil, fail(primary, method, ErrNilResult)
	}

	r.logger.Debug("data provider resolved",
		zap.String("property", desc.FieldName),
		zap.Stringer("bean", primary),
		zap.String("method", method),
		zap.Bool("param", len(args) > 0),
	)
	return result, nil
}

// ResolveList resolves like Resolve and flattens the result into a new slice.
// Slices and arrays keep their order; sets are ordered by their printed form.
func (r *Resolver) ResolveList(desc meta.Descriptor, owner ContentOwner, entity any) ([]any, error) {
	result, err := r.Resolve(desc, owner, entity)
	if err != nil {
		return nil, err
	}
	items, ok := flatten(result)
	if !ok {
		return nil, &ResolutionError{
			Property: desc.FieldName,
			Target:   desc.DataProviderBean.String(),
			Method:   desc.DataProviderMethod,
			Err:      fmt.Errorf("%w: %T", ErrResultType, result),
		}
	}
	return items, nil
}

func (r *Resolver) param(desc meta.Descriptor, owner ContentOwner, entity any) (any, meta.Target, error) {
	method := strings.TrimSpace(desc.DataProviderParamMethod)
	if strings.EqualFold(method, meta.SentinelThis) {
		return entity, meta.ParseTarget(meta.SentinelThis), nil
	}

	target := desc.DataProviderParamBean
	if !target.IsSet() {
		target = desc.DataProviderBean
	}
	if target.IsNone() {
		return nil, target, ErrSentinelNone
	}
	value, err := r.Call(target, owner, method)
	if err != nil {
		return nil, target, err
	}
	return value, target, nil
}

func flatten(result any) ([]any, bool) {
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = v.Index(i).Interface()
		}
		return out, true
	case reflect.Map:
		elem := v.Type().Elem()
		if elem.Kind() != reflect.Bool && !(elem.Kind() == reflect.Struct && elem.NumField() == 0) {
			return nil, false
		}
		out := make([]any, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if elem.Kind() == reflect.Bool && !iter.Value().Bool() {
				continue
			}
			out = append(out, iter.Key().Interface())
		}
		sort.SliceStable(out, func(i, j int) bool {
			return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
		})
		return out, true
	}
	return nil, false
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
