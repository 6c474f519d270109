// Package metrics records form synthesis counters.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder observes the lifecycle of form synthesis. Implementations must be
// safe to call from the goroutine that builds the form.
type Recorder interface {
	FormBuilt(form string)
	WidgetResolved(form, kind string)
	ResolutionFailed(form string)
	PropertyExcluded(form string)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) FormBuilt(string)              {}
func (Nop) WidgetResolved(string, string) {}
func (Nop) ResolutionFailed(string)       {}
func (Nop) PropertyExcluded(string)       {}

// DefaultNamespace is used when NewPrometheus receives an empty namespace.
const DefaultNamespace = "entityform"

// Prometheus implements Recorder with prometheus counter vectors.
type Prometheus struct {
	formsBuilt       *prometheus.CounterVec
	widgetsResolved  *prometheus.CounterVec
	resolutionFailed *prometheus.CounterVec
	propertyExcluded *prometheus.CounterVec
}

// NewPrometheus creates the counters and registers them on reg. A nil
// registerer disables metrics and returns a nil recorder, whose methods are
// no-ops.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		return nil, nil
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	p := &Prometheus{
		formsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "built_total",
			Help:      "Total number of forms built",
		}, []string{"form"}),
		widgetsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "widgets_resolved_total",
			Help:      "Total number of widgets resolved, by widget kind",
		}, []string{"form", "kind"}),
		resolutionFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "resolution_failures_total",
			Help:      "Total number of failed form builds",
		}, []string{"form"}),
		propertyExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "properties_excluded_total",
			Help:      "Total number of properties excluded from forms",
		}, []string{"form"}),
	}

	collectors := []prometheus.Collector{
		p.formsBuilt,
		p.widgetsResolved,
		p.resolutionFailed,
		p.propertyExcluded,
	}
	var errs []error
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("metrics: register collectors: %w", err)
	}
	return p, nil
}

func (p *Prometheus) FormBuilt(form string) {
	if p == nil {
		return
	}
	p.formsBuilt.WithLabelValues(form).Inc()
}

func (p *Prometheus) WidgetResolved(form, kind string) {
	if p == nil {
		return
	}
	p.widgetsResolved.WithLabelValues(form, kind).Inc()
}

func (p *Prometheus) ResolutionFailed(form string) {
	if p == nil {
		return
	}
	p.resolutionFailed.WithLabelValues(form).Inc()
}

func (p *Prometheus) PropertyExcluded(form string) {
	if p == nil {
		return
	}
	p.propertyExcluded.WithLabelValues(form).Inc()
}

var (
	_ Recorder = Nop{}
	_ Recorder = (*Prometheus)(nil)
)
