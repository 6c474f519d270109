package widgets

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/goliatone/go-entityform/pkg/provider"
	"go.uber.org/zap"
)

var (
	// ErrExcluded marks a property that is intentionally left out of the form.
	ErrExcluded = errors.New("widgets: property excluded")
	// ErrUnsupportedType is returned when no rule can represent a property.
	ErrUnsupportedType = errors.New("widgets: unsupported field type")
	// ErrCustomWidget is returned when a construction method misbehaves.
	ErrCustomWidget = errors.New("widgets: custom widget")
	// ErrInvalidDefault is returned when a default value cannot be applied.
	ErrInvalidDefault = errors.New("widgets: invalid default value")
)

// Default thresholds used when no option overrides them.
const (
	DefaultLongTextThreshold = meta.DefaultMaxLength
	DefaultMinWidth          = "12em"
	DefaultMaxWidth          = "60em"
)

// Context is everything a rule needs to decide on and build a widget.
type Context struct {
	Property introspect.Property
	Owner    provider.ContentOwner
	// Entity returns the record passed to "this" parameters. It is called on
	// every load so data providers see the record currently edited.
	Entity func() any
}

// CurrentEntity returns the record for "this" parameters, or nil.
func (c Context) CurrentEntity() any {
	if c.Entity == nil {
		return nil
	}
	return c.Entity()
}

// Descriptor is a shorthand for the property metadata.
func (c Context) Descriptor() meta.Descriptor { return c.Property.Descriptor }

// Predicate decides whether a rule handles the property.
type Predicate func(ctx Context) bool

// Constructor builds the widget for a matched property.
type Constructor func(r *Resolver, ctx Context) (Widget, error)

type rule struct {
	name     string
	priority int
	match    Predicate
	build    Constructor
	order    int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDataProvider sets the resolver used for data sources and custom
// construction methods.
func WithDataProvider(p *provider.Resolver) Option {
	return func(r *Resolver) {
		if p != nil {
			r.data = p
		}
	}
}

// WithIcons replaces the icon catalogue offered by icon pickers.
func WithIcons(icons *IconCatalog) Option {
	return func(r *Resolver) {
		if icons != nil {
			r.icons = icons
		}
	}
}

// WithLongTextThreshold sets the max length above which text becomes a text
// area.
func WithLongTextThreshold(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.longText = n
		}
	}
}

// WithWidthBounds sets the clamp applied to full width widgets.
func WithWidthBounds(min, max string) Option {
	return func(r *Resolver) {
		r.minWidth = strings.TrimSpace(min)
		r.maxWidth = strings.TrimSpace(max)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver maps properties to widgets with an ordered rule list. Higher
// priority wins; ties fall back to registration order. The unsupported type
// rule is registered with the lowest possible priority and always matches.
type Resolver struct {
	mu    sync.RWMutex
	rules []rule

	data     *provider.Resolver
	icons    *IconCatalog
	longText int
	minWidth string
	maxWidth string
	logger   *zap.Logger
}

// NewResolver constructs a resolver with the built-in rules registered.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		longText: DefaultLongTextThreshold,
		minWidth: DefaultMinWidth,
		maxWidth: DefaultMaxWidth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.data == nil {
		r.data = provider.NewResolver(provider.WithLogger(r.logger))
	}
	if r.icons == nil {
		r.icons = DefaultIcons()
	}
	r.registerBuiltins()
	return r
}

// Register adds a rule. Rules registered later with the same priority as a
// built-in are evaluated after it.
func (r *Resolver) Register(name string, priority int, match Predicate, build Constructor) {
	if r == nil || match == nil || build == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	if priority == math.MinInt && trimmed != ruleUnsupported {
		priority++
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    match,
		build:    build,
		order:    len(r.rules),
	})
}

// Rules lists rule names in evaluation order.
func (r *Resolver) Rules() []string {
	rules := r.sorted()
	names := make([]string, 0, len(rules))
	for _, entry := range rules {
		names = append(names, entry.name)
	}
	return names
}

// Match returns the name of the first rule matching ctx without building.
func (r *Resolver) Match(ctx Context) string {
	for _, entry := range r.sorted() {
		if entry.match(ctx) {
			return entry.name
		}
	}
	return ""
}

// Choose builds the widget for ctx. ErrExcluded signals an intentional
// exclusion; every other error is fatal for the form being built.
func (r *Resolver) Choose(ctx Context) (Widget, error) {
	for _, entry := range r.sorted() {
		if !entry.match(ctx) {
			continue
		}
		widget, err := entry.build(r, ctx)
		if err != nil {
			if !errors.Is(err, ErrExcluded) {
				r.logger.Error("widget resolution failed",
					zap.String("property", ctx.Property.Name),
					zap.String("rule", entry.name),
					zap.Error(err),
				)
			}
			return nil, fmt.Errorf("widgets: property %q (rule %s): %w", ctx.Property.Name, entry.name, err)
		}
		r.logger.Debug("widget resolved",
			zap.String("property", ctx.Property.Name),
			zap.String("rule", entry.name),
			zap.String("kind", string(widget.Kind())),
		)
		return widget, nil
	}
	// unreachable while the unsupported rule is registered
	return nil, fmt.Errorf("widgets: property %q: %w", ctx.Property.Name, ErrUnsupportedType)
}

// DataProvider exposes the configured data provider resolver.
func (r *Resolver) DataProvider() *provider.Resolver { return r.data }

// Icons exposes the icon catalogue.
func (r *Resolver) Icons() *IconCatalog { return r.icons }

func (r *Resolver) sorted() []rule {
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	return rules
}
