package binding

import (
	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"go.uber.org/zap"
)

// Wrapper binds widgets through the converter their kind needs.
type Wrapper struct {
	binder *Binder
	logger *zap.Logger
}

// NewWrapper wraps binder. A nil logger discards output.
func NewWrapper(binder *Binder, logger *zap.Logger) *Wrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wrapper{binder: binder, logger: logger}
}

// Binder returns the wrapped binder.
func (w *Wrapper) Binder() *Binder { return w.binder }

// Bind attaches widget to prop. Decimal properties whose converting bind fails
// are retried once with a plain bind before the error is returned.
func (w *Wrapper) Bind(widget widgets.Widget, prop introspect.Property) (*Binding, error) {
	conv, err := ConverterFor(prop, widget.Kind())
	if err != nil {
		return nil, &BindError{Property: prop.Name, Err: err}
	}
	if conv == nil {
		return w.binder.Bind(widget, prop)
	}

	binding, err := w.binder.BindWithConverter(widget, prop, conv)
	if err == nil || prop.Kind != introspect.KindDecimal {
		return binding, err
	}

	w.logger.Warn("decimal converter bind failed, retrying plain bind",
		zap.String("property", prop.Name),
		zap.Error(err),
	)
	if plain, plainErr := w.binder.Bind(widget, prop); plainErr == nil {
		return plain, nil
	}
	return nil, err
}
