package form

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-entityform/pkg/binding"
)

type firstSelector interface {
	SelectFirst() bool
}

type reloader interface {
	Reload() error
}

type validator interface {
	Validate() error
}

// Values returns the current widget values by property name.
func (f *Form) Values() map[string]any {
	out := make(map[string]any, len(f.rows))
	for _, row := range f.rows {
		out[row.Name] = row.Widget.Value()
	}
	return out
}

// ResetChoicesToFirst selects the first offered item of every single value
// choice widget. It returns the names of the rows that changed selection.
func (f *Form) ResetChoicesToFirst() []string {
	var changed []string
	for _, row := range f.rows {
		kind := row.Widget.Kind()
		if !kind.IsChoice() || kind.IsMulti() {
			continue
		}
		selector, ok := row.Widget.(firstSelector)
		if !ok {
			continue
		}
		if selector.SelectFirst() {
			changed = append(changed, row.Name)
		}
	}
	return changed
}

// RefreshChoices reloads the items of every data driven widget from its data
// provider.
func (f *Form) RefreshChoices() error {
	var errs []error
	for _, row := range f.rows {
		r, ok := row.Widget.(reloader)
		if !ok {
			continue
		}
		if err := r.Reload(); err != nil {
			errs = append(errs, fmt.Errorf("form: reload %q: %w", row.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks every widget and reports the write back failures recorded
// by the binder.
func (f *Form) Validate() error {
	var errs []error
	for _, row := range f.rows {
		if v, ok := row.Widget.(validator); ok {
			if err := v.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	fieldErrors := f.binder.FieldErrors()
	for _, name := range f.binder.FieldErrorNames() {
		errs = append(errs, &binding.BindError{Property: name, Err: fieldErrors[name]})
	}
	return errors.Join(errs...)
}
