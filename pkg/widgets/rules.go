package widgets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/meta"
	"go.uber.org/zap"
)

// Built-in rule names, listed in evaluation order.
const (
	ruleCustom             = "custom-component"
	ruleTextSource         = "text-data-source"
	ruleCollectionSource   = "collection-data-source"
	ruleCollectionExcluded = "collection-excluded"
	ruleNumber             = "number"
	ruleTemporal           = "temporal"
	ruleEnum               = "enumeration"
	ruleImage              = "image"
	ruleReferenceDisabled  = "reference-disabled"
	ruleReference          = "reference"
	ruleCheckbox           = "checkbox"
	ruleText               = "text"
	ruleUnsupported        = "unsupported"
)

// Layouts accepted for temporal default values.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = time.RFC3339
)

func (r *Resolver) registerBuiltins() {
	r.Register(ruleCustom, 1200, func(ctx Context) bool {
		return ctx.Descriptor().HasCustomComponent()
	}, buildCustom)

	r.Register(ruleTextSource, 1100, func(ctx Context) bool {
		return ctx.Property.Kind == introspect.KindText && ctx.Descriptor().HasDataSource()
	}, buildTextChoice)

	r.Register(ruleCollectionSource, 1000, func(ctx Context) bool {
		return ctx.Property.Kind.IsCollection() && ctx.Descriptor().HasDataSource()
	}, buildMultiChoice)

	r.Register(ruleCollectionExcluded, 900, func(ctx Context) bool {
		return ctx.Property.Kind.IsCollection()
	}, func(_ *Resolver, ctx Context) (Widget, error) {
		return nil, fmt.Errorf("%w: collection %q has no data source", ErrExcluded, ctx.Property.Name)
	})

	r.Register(ruleNumber, 800, func(ctx Context) bool {
		switch ctx.Property.Kind {
		case introspect.KindInteger, introspect.KindFloat, introspect.KindDecimal:
			return true
		}
		return false
	}, buildNumber)

	r.Register(ruleTemporal, 700, func(ctx Context) bool {
		return ctx.Property.Kind.IsTemporal()
	}, buildTemporal)

	r.Register(ruleEnum, 600, func(ctx Context) bool {
		return ctx.Property.Kind == introspect.KindEnum
	}, buildEnum)

	r.Register(ruleImage, 500, func(ctx Context) bool {
		return ctx.Property.Kind == introspect.KindBlob && ctx.Descriptor().ImageData
	}, func(r *Resolver, ctx Context) (Widget, error) {
		return r.finish(ctx, r.newInput(ctx, KindImage))
	})

	r.Register(ruleReferenceDisabled, 450, func(ctx Context) bool {
		return ctx.Property.Kind == introspect.KindReference && ctx.Descriptor().DataProviderBean.IsNone()
	}, func(_ *Resolver, ctx Context) (Widget, error) {
		return nil, fmt.Errorf("%w: reference %q has its data provider disabled", ErrExcluded, ctx.Property.Name)
	})

	r.Register(ruleReference, 400, func(ctx Context) bool {
		return ctx.Descriptor().HasDataSource() || ctx.Property.Kind == introspect.KindReference
	}, buildReference)

	r.Register(ruleCheckbox, 300, func(ctx Context) bool {
		return ctx.Property.Kind == introspect.KindBool
	}, func(r *Resolver, ctx Context) (Widget, error) {
		return r.finish(ctx, r.newInput(ctx, KindCheckbox))
	})

	r.Register(ruleText, 200, func(ctx Context) bool {
		return ctx.Property.Kind == introspect.KindText
	}, buildText)

	r.Register(ruleUnsupported, math.MinInt, func(Context) bool {
		return true
	}, func(_ *Resolver, ctx Context) (Widget, error) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ctx.Property.Type)
	})
}

func buildCustom(r *Resolver, ctx Context) (Widget, error) {
	desc := ctx.Descriptor()
	method := desc.CustomComponentMethod()
	target := desc.DataProviderBean
	if !target.IsSet() || target.IsNone() {
		return nil, fmt.Errorf("%w: method %q needs a data provider bean", ErrCustomWidget, method)
	}
	result, err := r.data.Call(target, ctx.Owner, method)
	if err != nil {
		return nil, err
	}
	widget, ok := result.(Widget)
	if !ok || isNilValue(result) {
		return nil, fmt.Errorf("%w: %s.%s returned %T, not a widget", ErrCustomWidget, target, method, result)
	}
	if aware, ok := widget.(OwnerAware); ok {
		aware.SetContentOwner(ctx.Owner)
	}
	return widget, nil
}

func buildTextChoice(r *Resolver, ctx Context) (Widget, error) {
	in := r.newInput(ctx, KindCombobox)
	in.AllowCustomValue = ctx.Descriptor().AllowCustomValue
	in.Loader = r.loader(ctx, ctx.Descriptor())
	if err := in.Reload(); err != nil {
		return nil, err
	}
	return r.finish(ctx, in)
}

func buildMultiChoice(r *Resolver, ctx Context) (Widget, error) {
	desc := ctx.Descriptor()
	kind := KindMultiSelect
	switch {
	case desc.UseGridSelection:
		kind = KindGridSelect
	case desc.UseDualListSelector:
		kind = KindDualList
	}
	in := r.newInput(ctx, kind)
	in.Loader = r.loader(ctx, desc)
	if err := in.Reload(); err != nil {
		return nil, err
	}
	return r.finish(ctx, in)
}

func buildNumber(r *Resolver, ctx Context) (Widget, error) {
	in := r.newInput(ctx, KindNumber)
	in.Step = 0.01
	if ctx.Property.Kind == introspect.KindInteger {
		in.Step = 1
	}
	return r.finish(ctx, in)
}

func buildTemporal(r *Resolver, ctx Context) (Widget, error) {
	kind := KindDateTime
	switch ctx.Property.Kind {
	case introspect.KindDate:
		kind = KindDate
	case introspect.KindTime:
		kind = KindTime
	}
	return r.finish(ctx, r.newInput(ctx, kind))
}

func buildEnum(r *Resolver, ctx Context) (Widget, error) {
	kind := KindSelect
	if ctx.Descriptor().UseRadioButtons {
		kind = KindRadioGroup
	}
	in := r.newInput(ctx, kind)
	in.Closed = true
	in.AllowCustomValue = false

	values := meta.Enumerants(ctx.Property.Type)
	items := make([]Item, 0, len(values))
	for _, value := range values {
		items = append(items, itemFor(value))
	}
	in.SetItems(items)
	return r.finish(ctx, in)
}

func buildReference(r *Resolver, ctx Context) (Widget, error) {
	desc := ctx.Descriptor()
	if !desc.DataProviderBean.IsSet() {
		name := meta.ServiceNameFor(ctx.Property.Type)
		if name == "" {
			return nil, fmt.Errorf("%w: cannot derive a service name for %s", ErrUnsupportedType, ctx.Property.Type)
		}
		desc.DataProviderBean = meta.Named(name)
	}
	in := r.newInput(ctx, KindCombobox)
	in.Loader = r.loader(ctx, desc)
	if err := in.Reload(); err != nil {
		return nil, err
	}
	return r.finish(ctx, in)
}

func buildText(r *Resolver, ctx Context) (Widget, error) {
	desc := ctx.Descriptor()
	switch {
	case desc.ColorField:
		return r.finish(ctx, r.newInput(ctx, KindColor))
	case desc.UseIcon:
		in := r.newInput(ctx, KindIcon)
		in.SetItems(r.icons.Items())
		return r.finish(ctx, in)
	case desc.MaxLength > r.longText:
		return r.finish(ctx, r.newInput(ctx, KindTextArea))
	case desc.PasswordField:
		in := r.newInput(ctx, KindPassword)
		in.PasswordReveal = desc.PasswordReveal
		return r.finish(ctx, in)
	default:
		return r.finish(ctx, r.newInput(ctx, KindText))
	}
}

// loader returns a function fetching fresh items from the data provider on
// every call.
func (r *Resolver) loader(ctx Context, desc meta.Descriptor) func() ([]Item, error) {
	return func() ([]Item, error) {
		values, err := r.data.ResolveList(desc, ctx.Owner, ctx.CurrentEntity())
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(values))
		for _, value := range values {
			items = append(items, itemFor(value))
		}
		return items, nil
	}
}

func itemFor(value any) Item {
	switch v := value.(type) {
	case meta.Entity:
		if !isNilValue(value) {
			return Item{Label: v.EntityLabel(), Value: value}
		}
	case fmt.Stringer:
		if !isNilValue(value) {
			return Item{Label: v.String(), Value: value}
		}
	}
	return Item{Label: fmt.Sprint(value), Value: value}
}

// newInput applies the presentation state shared by every built-in widget.
func (r *Resolver) newInput(ctx Context, kind Kind) *Input {
	desc := ctx.Descriptor()
	in := NewInput(kind, ctx.Property.Name)
	in.Label = desc.DisplayName
	in.Description = desc.Description
	in.Placeholder = desc.Placeholder
	in.ClassName = "form-field-" + string(kind)
	in.ReadOnly = desc.ReadOnly || (kind.IsChoice() && desc.ComboboxReadOnly)
	in.Required = desc.Required
	in.MaxLength = desc.MaxLength
	in.Min = desc.Min
	in.Max = desc.Max

	if width := strings.TrimSpace(desc.Width); width != "" {
		in.Width = width
	} else {
		in.FullWidth = true
		in.MinWidth = r.minWidth
		in.MaxWidth = r.maxWidth
	}

	if kind.IsChoice() || kind.IsMulti() {
		in.AutoSelectFirst = desc.AutoSelectFirst
		in.ClearOnEmptyData = desc.ClearOnEmptyData
	}
	return in
}

// finish applies the declared default value.
func (r *Resolver) finish(ctx Context, in *Input) (Widget, error) {
	raw := strings.TrimSpace(ctx.Descriptor().DefaultValue)
	if raw == "" {
		return in, nil
	}
	value, ok, err := parseDefault(in, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDefault, raw, err)
	}
	if !ok {
		r.logger.Debug("default value not offered by data provider",
			zap.String("property", ctx.Property.Name),
			zap.String("default", raw),
		)
		return in, nil
	}
	if err := in.SetValue(value); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDefault, raw, err)
	}
	in.Default = value
	return in, nil
}

// parseDefault converts a declared default to the widget's value. The boolean
// is false when a data driven choice does not currently offer the value.
func parseDefault(in *Input, raw string) (any, bool, error) {
	kind := in.Kind()
	switch {
	case kind.IsTextual():
		return raw, true, nil
	case kind.IsChoice():
		if item, found := in.ItemByLabel(raw); found {
			return item.Value, true, nil
		}
		if in.Closed || in.Loader == nil {
			if kind == KindIcon {
				return nil, false, fmt.Errorf("unknown icon")
			}
			return nil, false, fmt.Errorf("not one of the offered values")
		}
		return nil, false, nil
	}
	switch kind {
	case KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		return f, err == nil, err
	case KindCheckbox:
		b, err := strconv.ParseBool(raw)
		return b, err == nil, err
	case KindDate:
		t, err := time.Parse(DateLayout, raw)
		return t, err == nil, err
	case KindTime:
		t, err := time.Parse(TimeLayout, raw)
		return t, err == nil, err
	case KindDateTime:
		t, err := time.Parse(DateTimeLayout, raw)
		return t, err == nil, err
	}
	return nil, false, fmt.Errorf("%s widgets do not support default values", kind)
}
