// Package tui fills synthesized forms interactively in a terminal. Every
// editable row is prompted through a PromptDriver and the answer is written
// through the row's widget, so the bound record is updated by the binder.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"go.uber.org/zap"
)

// Filler prompts for the values of a form.
type Filler struct {
	driver   PromptDriver
	theme    Theme
	logger   *zap.Logger
	pageSize int
}

// New constructs a Filler. The survey driver is used unless another one is
// configured.
func New(options ...Option) *Filler {
	f := &Filler{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill prompts every editable row of target in row order. Read only rows and
// widgets that cannot be edited in a terminal are skipped with a message.
func (f *Filler) Fill(ctx context.Context, target *form.Form) error {
	if target == nil {
		return ErrNilForm
	}
	for _, row := range target.Rows() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.fillRow(ctx, row); err != nil {
			return fmt.Errorf("tui: %q: %w", row.Name, err)
		}
	}
	return nil
}

func (f *Filler) fillRow(ctx context.Context, row *form.Row) error {
	w := row.Widget
	in, _ := w.(*widgets.Input)
	if row.Property.Descriptor.ReadOnly || (in != nil && in.ReadOnly) {
		f.logger.Debug("skipping read only row", zap.String("property", row.Name))
		return nil
	}

	message := f.theme.PromptPrefix + row.Label
	help := row.Property.Descriptor.Description
	kind := w.Kind()

	switch {
	case kind == widgets.KindForm:
		nested, ok := w.(*form.Form)
		if !ok {
			return nil
		}
		if err := f.info(ctx, row.Label); err != nil {
			return err
		}
		return f.Fill(ctx, nested)

	case kind == widgets.KindCustom || kind == widgets.KindImage:
		return f.info(ctx, fmt.Sprintf("%s: not editable in a terminal", row.Label))

	case kind.IsMulti():
		return f.multi(ctx, row, in, message, help)

	case kind.IsChoice():
		return f.choice(ctx, row, in, message, help)

	case kind == widgets.KindCheckbox:
		current, _ := w.Value().(bool)
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: help})
		if err != nil {
			return err
		}
		return w.SetValue(answer)

	case kind == widgets.KindTextArea:
		current, _ := w.Value().(string)
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current, Help: help})
		if err != nil {
			return err
		}
		return w.SetValue(answer)

	case kind == widgets.KindPassword:
		answer, err := f.driver.Password(ctx, InputConfig{Message: message, Help: help, Validator: textValidator(row)})
		if err != nil {
			return err
		}
		return w.SetValue(answer)

	case kind == widgets.KindNumber:
		return f.number(ctx, row, in, message, help)

	case kind == widgets.KindDate || kind == widgets.KindTime || kind == widgets.KindDateTime:
		return f.temporal(ctx, row, message, help)
	}

	current, _ := w.Value().(string)
	cfg := InputConfig{
		Message:     message,
		Default:     current,
		Help:        help,
		Placeholder: row.Property.Descriptor.Placeholder,
		Validator:   textValidator(row),
	}
	answer, err := f.driver.Input(ctx, cfg)
	if err != nil {
		return err
	}
	return w.SetValue(answer)
}

func (f *Filler) choice(ctx context.Context, row *form.Row, in *widgets.Input, message, help string) error {
	if in == nil || len(in.Items) == 0 {
		return f.info(ctx, fmt.Sprintf("%s: no options available", row.Label))
	}
	options := labels(in.Items)
	current := row.Widget.Value()
	defaultIndex := -1
	for i, item := range in.Items {
		if sameItem(item.Value, current) {
			defaultIndex = i
			break
		}
	}
	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      options,
		DefaultIndex: defaultIndex,
		Help:         help,
		PageSize:     f.pageSize,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(in.Items) {
		return nil
	}
	return row.Widget.SetValue(in.Items[idx].Value)
}

func (f *Filler) multi(ctx context.Context, row *form.Row, in *widgets.Input, message, help string) error {
	if in == nil || len(in.Items) == 0 {
		return f.info(ctx, fmt.Sprintf("%s: no options available", row.Label))
	}
	current, _ := row.Widget.Value().([]any)
	var defaults []int
	for i, item := range in.Items {
		for _, value := range current {
			if sameItem(item.Value, value) {
				defaults = append(defaults, i)
				break
			}
		}
	}
	indices, err := f.driver.MultiSelect(ctx, SelectConfig{
		Message:  message,
		Options:  labels(in.Items),
		Defaults: defaults,
		Help:     help,
		PageSize: f.pageSize,
	})
	if err != nil {
		return err
	}
	values := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(in.Items) {
			values = append(values, in.Items[idx].Value)
		}
	}
	return row.Widget.SetValue(values)
}

func (f *Filler) number(ctx context.Context, row *form.Row, in *widgets.Input, message, help string) error {
	var current string
	if v, ok := row.Widget.Value().(float64); ok {
		current = strconv.FormatFloat(v, 'f', -1, 64)
	}
	validator := func(text string) error {
		_, err := parseNumber(text, in)
		return err
	}
	answer, err := f.driver.Input(ctx, InputConfig{Message: message, Default: current, Help: help, Validator: validator})
	if err != nil {
		return err
	}
	value, err := parseNumber(answer, in)
	if err != nil {
		return err
	}
	return row.Widget.SetValue(value)
}

func (f *Filler) temporal(ctx context.Context, row *form.Row, message, help string) error {
	layout := layoutFor(row.Widget.Kind())
	var current string
	if v, ok := row.Widget.Value().(time.Time); ok && !v.IsZero() {
		current = v.Format(layout)
	}
	validator := func(text string) error {
		_, err := parseTime(text, layout)
		return err
	}
	answer, err := f.driver.Input(ctx, InputConfig{
		Message:     message,
		Default:     current,
		Help:        help,
		Placeholder: layout,
		Validator:   validator,
	})
	if err != nil {
		return err
	}
	value, err := parseTime(answer, layout)
	if err != nil {
		return err
	}
	return row.Widget.SetValue(value)
}

func (f *Filler) info(ctx context.Context, msg string) error {
	return f.driver.Info(ctx, f.theme.InfoPrefix+msg)
}

func textValidator(row *form.Row) func(string) error {
	desc := row.Property.Descriptor
	return func(text string) error {
		if desc.Required && strings.TrimSpace(text) == "" {
			return fmt.Errorf("%s is required", row.Label)
		}
		if desc.MaxLength > 0 && len([]rune(text)) > desc.MaxLength {
			return fmt.Errorf("%s is limited to %d characters", row.Label, desc.MaxLength)
		}
		return nil
	}
}

// parseNumber returns nil for blank input.
func parseNumber(text string, in *widgets.Input) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", text)
	}
	if in != nil && (value < in.Min || value > in.Max) {
		return nil, fmt.Errorf("%v is outside [%v, %v]", value, in.Min, in.Max)
	}
	return value, nil
}

// parseTime returns nil for blank input.
func parseTime(text, layout string) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	value, err := time.Parse(layout, text)
	if err != nil {
		return nil, fmt.Errorf("%q does not match %s", text, layout)
	}
	return value, nil
}

func layoutFor(kind widgets.Kind) string {
	switch kind {
	case widgets.KindDate:
		return widgets.DateLayout
	case widgets.KindTime:
		return widgets.TimeLayout
	}
	return widgets.DateTimeLayout
}

func labels(items []widgets.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func sameItem(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ea, okA := a.(meta.Entity)
	eb, okB := b.(meta.Entity)
	if okA && okB {
		return ea.EntityID() == eb.EntityID()
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
