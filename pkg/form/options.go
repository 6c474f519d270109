package form

import (
	"github.com/goliatone/go-entityform/pkg/metrics"
	"github.com/goliatone/go-entityform/pkg/provider"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"go.uber.org/zap"
)

// Option configures Build.
type Option func(*options)

type options struct {
	services     provider.Services
	session      any
	sessionName  string
	dataProvider *provider.Resolver
	resolver     *widgets.Resolver
	icons        *widgets.IconCatalog
	longText     int
	minWidth     string
	maxWidth     string
	widthsSet    bool

	fields      []string
	tagKey      string
	sortByOrder bool

	owner  provider.ContentOwner
	entity any
	source func(parent any) any

	logger   *zap.Logger
	metrics  metrics.Recorder
	notifier Notifier
}

func newOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		metrics:  metrics.Nop{},
		notifier: NotifierFunc(func(string, error) {}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// widgetResolver returns the configured resolver or assembles one from the
// data provider options.
func (o options) widgetResolver() *widgets.Resolver {
	if o.resolver != nil {
		return o.resolver
	}
	data := o.dataProvider
	if data == nil {
		providerOpts := []provider.Option{provider.WithLogger(o.logger)}
		if o.services != nil {
			providerOpts = append(providerOpts, provider.WithServices(o.services))
		}
		if o.session != nil {
			providerOpts = append(providerOpts, provider.WithSession(o.session))
		}
		if o.sessionName != "" {
			providerOpts = append(providerOpts, provider.WithSessionName(o.sessionName))
		}
		data = provider.NewResolver(providerOpts...)
	}
	resolverOpts := []widgets.Option{
		widgets.WithDataProvider(data),
		widgets.WithLogger(o.logger),
		widgets.WithIcons(o.icons),
		widgets.WithLongTextThreshold(o.longText),
	}
	if o.widthsSet {
		resolverOpts = append(resolverOpts, widgets.WithWidthBounds(o.minWidth, o.maxWidth))
	}
	return widgets.NewResolver(resolverOpts...)
}

// WithServices sets the registry data provider beans are looked up in.
func WithServices(services provider.Services) Option {
	return func(o *options) { o.services = services }
}

// WithSession sets the object the session sentinel resolves to.
func WithSession(session any) Option {
	return func(o *options) { o.session = session }
}

// WithSessionName changes the bean the session sentinel falls back to.
func WithSessionName(name string) Option {
	return func(o *options) { o.sessionName = name }
}

// WithDataProvider uses a preconfigured data provider resolver. It takes
// precedence over WithServices and WithSession.
func WithDataProvider(data *provider.Resolver) Option {
	return func(o *options) { o.dataProvider = data }
}

// WithWidgetResolver uses a preconfigured widget resolver, typically one with
// extra rules registered. It takes precedence over every data provider and
// presentation option.
func WithWidgetResolver(resolver *widgets.Resolver) Option {
	return func(o *options) { o.resolver = resolver }
}

// WithIcons sets the icon catalogue offered by icon pickers.
func WithIcons(icons *widgets.IconCatalog) Option {
	return func(o *options) { o.icons = icons }
}

// WithLongTextThreshold sets the max length above which text properties are
// edited in a text area.
func WithLongTextThreshold(n int) Option {
	return func(o *options) { o.longText = n }
}

// WithWidthBounds clamps the width of full width widgets.
func WithWidthBounds(min, max string) Option {
	return func(o *options) {
		o.minWidth, o.maxWidth = min, max
		o.widthsSet = true
	}
}

// WithFields restricts the form to the named properties, in that order.
func WithFields(names ...string) Option {
	return func(o *options) { o.fields = append([]string(nil), names...) }
}

// WithTagKey changes the struct tag metadata is read from.
func WithTagKey(key string) Option {
	return func(o *options) { o.tagKey = key }
}

// WithSortByOrder orders discovered properties by their order metadata.
func WithSortByOrder() Option {
	return func(o *options) { o.sortByOrder = true }
}

// WithOwner sets the content owner the context sentinel resolves to. The form
// itself is used when no owner is given.
func WithOwner(owner provider.ContentOwner) Option {
	return func(o *options) { o.owner = owner }
}

// WithEntity sets the entity passed to parameter methods named "this" until a
// record is populated; the populated record is passed from then on.
func WithEntity(entity any) Option {
	return func(o *options) { o.entity = entity }
}

// WithSource selects the record a nested form populates from when its parent
// is populated.
func WithSource(source func(parent any) any) Option {
	return func(o *options) { o.source = source }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithNotifier sets where lazy loading failures are reported during Populate.
func WithNotifier(notifier Notifier) Option {
	return func(o *options) {
		if notifier != nil {
			o.notifier = notifier
		}
	}
}
