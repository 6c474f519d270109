package binding

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"go.uber.org/zap"
)

// Binding is the live association between a widget and a property.
type Binding struct {
	Widget    widgets.Widget
	Property  introspect.Property
	Converter Converter

	remove func()
}

// Name is the bound property name.
func (b *Binding) Name() string { return b.Property.Name }

// Option configures a Binder.
type Option func(*Binder)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Binder keeps widgets and the properties of one bean in sync. Setting a bean
// pushes its values into every widget; widget changes are written back to the
// bean immediately. A Binder is not safe for concurrent use.
type Binder struct {
	beanType    reflect.Type
	bean        any
	bindings    []*Binding
	byName      map[string]*Binding
	fieldErrors map[string]error
	updating    bool
	logger      *zap.Logger
}

// NewBinder creates a binder for beans of beanType (a struct type or a
// pointer to one).
func NewBinder(beanType reflect.Type, opts ...Option) *Binder {
	for beanType != nil && beanType.Kind() == reflect.Pointer {
		beanType = beanType.Elem()
	}
	b := &Binder{
		beanType:    beanType,
		byName:      make(map[string]*Binding),
		fieldErrors: make(map[string]error),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// BeanType returns the struct type the binder accepts.
func (b *Binder) BeanType() reflect.Type { return b.beanType }

// Bind attaches w to prop without a converter. The widget's native value type
// must match the property type.
func (b *Binder) Bind(w widgets.Widget, prop introspect.Property) (*Binding, error) {
	if typed, ok := w.(widgets.Typed); ok {
		if native := typed.ValueType(); native != nil && native != prop.Type {
			return nil, &BindError{
				Property: prop.Name,
				Err:      fmt.Errorf("%w: %s holds %s, property is %s", ErrTypeMismatch, w.Kind(), native, prop.Type),
			}
		}
	}
	return b.BindWithConverter(w, prop, Identity(prop.Type))
}

// BindWithConverter attaches w to prop through conv. The converter is tried
// with the property's zero value before the binding is created.
func (b *Binder) BindWithConverter(w widgets.Widget, prop introspect.Property, conv Converter) (*Binding, error) {
	fail := func(err error) (*Binding, error) {
		return nil, &BindError{Property: prop.Name, Err: err}
	}
	switch {
	case w == nil:
		return fail(errors.New("widget is nil"))
	case conv == nil:
		return fail(ErrNoConverter)
	case prop.Owner != nil && prop.Owner != b.beanType:
		return fail(fmt.Errorf("%w: property of %s, binder for %s", ErrBeanType, prop.Owner, b.beanType))
	}
	if _, exists := b.byName[prop.Name]; exists {
		return fail(ErrDuplicate)
	}
	zero, err := conv.ToWidget(reflect.Zero(prop.Type).Interface())
	if err != nil {
		return fail(err)
	}
	if typed, ok := w.(widgets.Typed); ok && zero != nil {
		if native := typed.ValueType(); native != nil && reflect.TypeOf(zero) != native {
			return fail(fmt.Errorf("%w: converter yields %T, %s holds %s", ErrTypeMismatch, zero, w.Kind(), native))
		}
	}

	binding := &Binding{Widget: w, Property: prop, Converter: conv}
	binding.remove = w.OnChange(func(value any) {
		b.writeBack(binding, value)
	})
	b.bindings = append(b.bindings, binding)
	b.byName[prop.Name] = binding

	if b.bean != nil {
		if err := b.withUpdating(func() error { return b.push(binding) }); err != nil {
			return binding, err
		}
	}
	return binding, nil
}

// Unbind detaches a property's widget.
func (b *Binder) Unbind(name string) {
	binding, ok := b.byName[name]
	if !ok {
		return
	}
	binding.remove()
	delete(b.byName, name)
	delete(b.fieldErrors, name)
	for i, candidate := range b.bindings {
		if candidate == binding {
			b.bindings = append(b.bindings[:i], b.bindings[i+1:]...)
			break
		}
	}
}

// SetBean binds record, a pointer to the bean type, and pushes its values into
// every widget. A nil record clears the widgets. All push failures are joined;
// an uninitialised lazy value surfaces as *LazyLoadError and leaves the other
// widgets populated.
func (b *Binder) SetBean(record any) error {
	if isNil(record) {
		b.bean = nil
		b.fieldErrors = make(map[string]error)
		b.withUpdating(func() error {
			for _, binding := range b.bindings {
				binding.Widget.Clear()
			}
			return nil
		})
		return nil
	}
	rv := reflect.ValueOf(record)
	if rv.Kind() != reflect.Pointer || rv.Elem().Type() != b.beanType {
		return fmt.Errorf("%w: want *%s, got %T", ErrBeanType, b.beanType, record)
	}

	b.bean = record
	b.fieldErrors = make(map[string]error)
	return b.withUpdating(func() error {
		var errs []error
		for _, binding := range b.bindings {
			if err := b.push(binding); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Bean returns the bound record, nil when none is set.
func (b *Binder) Bean() any { return b.bean }

// Clear unbinds the current bean and resets every widget.
func (b *Binder) Clear() {
	_ = b.SetBean(nil)
}

// Refresh pushes the current bean again.
func (b *Binder) Refresh() error {
	if b.bean == nil {
		return nil
	}
	return b.SetBean(b.bean)
}

// WriteBean copies every widget value into record without binding it.
func (b *Binder) WriteBean(record any) error {
	rv := reflect.ValueOf(record)
	if isNil(record) || rv.Kind() != reflect.Pointer || rv.Elem().Type() != b.beanType {
		return fmt.Errorf("%w: want *%s, got %T", ErrBeanType, b.beanType, record)
	}
	var errs []error
	for _, binding := range b.bindings {
		if binding.Property.Descriptor.ReadOnly {
			continue
		}
		model, err := binding.Converter.ToModel(binding.Widget.Value())
		if err == nil {
			err = binding.Property.Set(record, model)
		}
		if err != nil {
			errs = append(errs, &BindError{Property: binding.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Bindings returns the bindings in creation order.
func (b *Binder) Bindings() []*Binding {
	return append([]*Binding(nil), b.bindings...)
}

// Binding looks up the binding of a property.
func (b *Binder) Binding(name string) (*Binding, bool) {
	binding, ok := b.byName[name]
	return binding, ok
}

// FieldErrors returns the write-back failures recorded since the last SetBean.
func (b *Binder) FieldErrors() map[string]error {
	out := make(map[string]error, len(b.fieldErrors))
	for name, err := range b.fieldErrors {
		out[name] = err
	}
	return out
}

// FieldErrorNames lists the properties with write-back failures, sorted.
func (b *Binder) FieldErrorNames() []string {
	names := make([]string, 0, len(b.fieldErrors))
	for name := range b.fieldErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Binder) push(binding *Binding) error {
	name := binding.Name()
	value, err := binding.Property.Get(b.bean)
	if err != nil {
		return &BindError{Property: name, Err: err}
	}
	if lazy, ok := value.(Lazy); ok && !isNil(value) && !lazy.Initialized() {
		return &LazyLoadError{Property: name, Type: fmt.Sprintf("%T", value), Err: ErrLazyLoad}
	}
	widgetValue, err := binding.Converter.ToWidget(value)
	if err != nil {
		return &BindError{Property: name, Err: err}
	}
	if err := binding.Widget.SetValue(widgetValue); err != nil {
		return &BindError{Property: name, Err: err}
	}
	return nil
}

func (b *Binder) writeBack(binding *Binding, value any) {
	if b.updating || b.bean == nil {
		return
	}
	name := binding.Name()
	if binding.Property.Descriptor.ReadOnly {
		return
	}
	model, err := binding.Converter.ToModel(value)
	if err == nil {
		err = binding.Property.Set(b.bean, model)
	}
	if err != nil {
		b.fieldErrors[name] = err
		b.logger.Warn("write back failed", zap.String("property", name), zap.Error(err))
		return
	}
	delete(b.fieldErrors, name)
}

func (b *Binder) withUpdating(fn func() error) error {
	previous := b.updating
	b.updating = true
	defer func() { b.updating = previous }()
	return fn()
}
