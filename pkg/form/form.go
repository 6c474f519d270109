// Package form assembles metadata driven forms: one row per property, each
// holding the widget chosen for it, bound to a record of the form's type.
package form

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-entityform/pkg/binding"
	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/provider"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Populator is implemented by widgets that populate themselves from the
// record of the form that contains them. Nested forms are detected through it.
type Populator interface {
	PopulateFrom(parent any) error
}

// Row is one layout row: a label and the widget editing a property.
type Row struct {
	Name     string
	Label    string
	Widget   widgets.Widget
	Property introspect.Property
	// Bound is false for custom widgets, which manage their own value.
	Bound bool
}

// Form is a synthesized form. It is also a Widget, so a form can be nested in
// another form through a custom construction method. A Form is not safe for
// concurrent use.
type Form struct {
	opts     options
	resolver *widgets.Resolver
	id       string
	typ      reflect.Type
	owner    provider.ContentOwner

	binder *binding.Binder
	rows   []*Row
	byName map[string]*Row

	listeners map[int]func(any)
	nextID    int
}

// Build synthesizes a form for t, a struct type or a pointer to one. The
// build is atomic: the first fatal error aborts it and no form is returned.
func Build(t reflect.Type, opts ...Option) (*Form, error) {
	o := newOptions(opts)
	f := &Form{
		opts:      o,
		resolver:  o.widgetResolver(),
		id:        uuid.NewString(),
		owner:     o.owner,
		listeners: make(map[int]func(any)),
	}
	if err := f.Rebuild(t); err != nil {
		return nil, err
	}
	return f, nil
}

// BuildFor synthesizes a form for T.
func BuildFor[T any](opts ...Option) (*Form, error) {
	return Build(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// Rebuild replaces the rows and bindings with those of a new type. On failure
// the form keeps its previous state.
func (f *Form) Rebuild(t reflect.Type) error {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return &BuildError{Err: ErrNilType}
	}
	name := t.Name()

	binder, rows, err := f.assemble(t)
	if err != nil {
		f.opts.metrics.ResolutionFailed(name)
		f.opts.logger.Error("form build failed", zap.String("type", t.String()), zap.Error(err))
		return err
	}

	f.typ = t
	f.binder = binder
	f.rows = rows
	f.byName = make(map[string]*Row, len(rows))
	for _, row := range rows {
		f.byName[row.Name] = row
	}
	f.opts.metrics.FormBuilt(name)
	f.opts.logger.Debug("form built", zap.String("type", t.String()), zap.Int("rows", len(rows)))
	return nil
}

func (f *Form) assemble(t reflect.Type) (*binding.Binder, []*Row, error) {
	fail := func(property string, err error) (*binding.Binder, []*Row, error) {
		return nil, nil, &BuildError{Type: t, Property: property, Err: err}
	}

	var introspectOpts []introspect.Option
	if f.opts.tagKey != "" {
		introspectOpts = append(introspectOpts, introspect.WithTagKey(f.opts.tagKey))
	}
	if f.opts.sortByOrder {
		introspectOpts = append(introspectOpts, introspect.WithSortByOrder())
	}

	var (
		props []introspect.Property
		err   error
	)
	if len(f.opts.fields) > 0 {
		props, err = introspect.ExtractNamed(t, f.opts.fields, introspectOpts...)
	} else {
		props, err = introspect.Extract(t, introspectOpts...)
	}
	if err != nil {
		return fail("", err)
	}

	binder := binding.NewBinder(t, binding.WithLogger(f.opts.logger))
	wrapper := binding.NewWrapper(binder, f.opts.logger)
	rows := make([]*Row, 0, len(props))
	kinds := make([]string, 0, len(props))

	for _, prop := range props {
		widget, err := f.resolver.Choose(widgets.Context{
			Property: prop,
			Owner:    f.contentOwner(),
			Entity:   func() any { return f.entity(t) },
		})
		if errors.Is(err, widgets.ErrExcluded) {
			f.opts.metrics.PropertyExcluded(t.Name())
			f.opts.logger.Debug("property excluded", zap.String("property", prop.Name), zap.Error(err))
			continue
		}
		if err != nil {
			return fail(prop.Name, err)
		}

		row := &Row{
			Name:     prop.Name,
			Label:    prop.Descriptor.DisplayName,
			Widget:   widget,
			Property: prop,
		}
		if bindable(widget) {
			if _, err := wrapper.Bind(widget, prop); err != nil {
				return fail(prop.Name, err)
			}
			row.Bound = true
		}
		rows = append(rows, row)
		kinds = append(kinds, string(widget.Kind()))
	}

	for _, kind := range kinds {
		f.opts.metrics.WidgetResolved(t.Name(), kind)
	}
	return binder, rows, nil
}

// custom widgets and nested forms keep their own values
func bindable(w widgets.Widget) bool {
	switch w.Kind() {
	case widgets.KindCustom, widgets.KindForm:
		return false
	}
	_, nested := w.(Populator)
	return !nested
}

func (f *Form) contentOwner() provider.ContentOwner {
	if f.owner != nil {
		return f.owner
	}
	return f
}

// Type returns the struct type the form edits.
func (f *Form) Type() reflect.Type { return f.typ }

// Binder exposes the binder keeping widgets and record in sync.
func (f *Form) Binder() *binding.Binder { return f.binder }

// Resolver exposes the widget resolver used by the form.
func (f *Form) Resolver() *widgets.Resolver { return f.resolver }

// Rows returns the layout rows in display order.
func (f *Form) Rows() []*Row {
	return append([]*Row(nil), f.rows...)
}

// Names lists the property names of the rows in display order.
func (f *Form) Names() []string {
	names := make([]string, 0, len(f.rows))
	for _, row := range f.rows {
		names = append(names, row.Name)
	}
	return names
}

// Row looks up the row of a property.
func (f *Form) Row(name string) (*Row, bool) {
	row, ok := f.byName[name]
	return row, ok
}

// Widget looks up the widget of a property.
func (f *Form) Widget(name string) (widgets.Widget, bool) {
	row, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return row.Widget, true
}

// CurrentEntity implements provider.ContentOwner. It is nil until a record is
// populated, including while the form is first built.
func (f *Form) CurrentEntity() any {
	if f.binder == nil {
		return nil
	}
	return f.binder.Bean()
}

// entity is the record handed to "this" parameters of a form of type t: the
// populated record, or the WithEntity value before one is bound.
func (f *Form) entity(t reflect.Type) any {
	if f.binder != nil && f.binder.BeanType() == t {
		if bean := f.binder.Bean(); bean != nil {
			return bean
		}
	}
	return f.opts.entity
}

// SetContentOwner implements widgets.OwnerAware.
func (f *Form) SetContentOwner(owner provider.ContentOwner) {
	if owner == provider.ContentOwner(f) {
		return
	}
	f.owner = owner
}

// Populate binds record, a pointer to a value of the form's type, and then
// populates every nested form from it. Lazy loading failures are reported
// through the notifier, logged, and returned with the other failures; widgets
// that could be populated keep their values.
func (f *Form) Populate(record any) error {
	err := f.populate(record)
	for _, lazy := range lazyLoadErrors(err) {
		f.opts.notifier.Notify(lazy.Property, lazy)
		f.opts.logger.Error("lazy loading failed",
			zap.String("type", f.typ.String()),
			zap.String("property", lazy.Property),
			zap.Error(lazy),
		)
	}
	return err
}

func (f *Form) populate(record any) error {
	var errs []error
	if err := f.binder.SetBean(record); err != nil {
		errs = append(errs, err)
	}
	for _, row := range f.rows {
		nested, ok := row.Widget.(Populator)
		if !ok {
			continue
		}
		if err := nested.PopulateFrom(record); err != nil {
			errs = append(errs, fmt.Errorf("form: nested %q: %w", row.Name, err))
		}
	}
	f.notifyChange()
	return errors.Join(errs...)
}

// PopulateFrom implements Populator. The record is selected from parent with
// the WithSource function; without one, parent is used when it has the form's
// type, otherwise the first field of parent holding the form's type is.
func (f *Form) PopulateFrom(parent any) error {
	if parent == nil {
		f.Clear()
		return nil
	}
	var record any
	if f.opts.source != nil {
		record = f.opts.source(parent)
	} else {
		var err error
		if record, err = f.locate(parent); err != nil {
			return err
		}
	}
	return f.populate(record)
}

func (f *Form) locate(parent any) (any, error) {
	rv := reflect.ValueOf(parent)
	if rv.Kind() == reflect.Pointer && rv.Type().Elem() == f.typ {
		return parent, nil
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T holds no %s", ErrNoSource, parent, f.typ)
	}
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Type().Field(i)
		if !field.IsExported() {
			continue
		}
		value := rv.Field(i)
		switch {
		case field.Type == reflect.PointerTo(f.typ):
			if value.IsNil() {
				return nil, nil
			}
			return value.Interface(), nil
		case field.Type == f.typ && value.CanAddr():
			return value.Addr().Interface(), nil
		}
	}
	return nil, fmt.Errorf("%w: %T holds no %s", ErrNoSource, parent, f.typ)
}

// Clear releases the bound record and resets every widget, nested forms
// included.
func (f *Form) Clear() {
	f.binder.Clear()
	for _, row := range f.rows {
		if !row.Bound {
			row.Widget.Clear()
		}
	}
	f.notifyChange()
}

// ID implements widgets.Widget.
func (f *Form) ID() string { return f.id }

// Kind implements widgets.Widget.
func (f *Form) Kind() widgets.Kind { return widgets.KindForm }

// Value implements widgets.Widget and returns the bound record.
func (f *Form) Value() any { return f.CurrentEntity() }

// SetValue implements widgets.Widget by populating the form.
func (f *Form) SetValue(value any) error { return f.Populate(value) }

// OnChange implements widgets.Widget. Listeners run after every populate and
// clear with the bound record.
func (f *Form) OnChange(fn func(value any)) func() {
	if fn == nil {
		return func() {}
	}
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() { delete(f.listeners, id) }
}

func (f *Form) notifyChange() {
	value := f.CurrentEntity()
	for _, fn := range f.listeners {
		fn(value)
	}
}

var (
	_ widgets.Widget        = (*Form)(nil)
	_ widgets.OwnerAware    = (*Form)(nil)
	_ provider.ContentOwner = (*Form)(nil)
	_ Populator             = (*Form)(nil)
)
