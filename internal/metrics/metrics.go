// Package metrics holds the Prometheus collectors of one environment.
// Each Metrics owns its registry so independent environments never share counters.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "textpipe"

// Metrics groups the collectors updated by pipelines and converters.
type Metrics struct {
	Registry *prometheus.Registry

	ResourceDuration  *prometheus.HistogramVec
	ResourceErrors    *prometheus.CounterVec
	Annotations       *prometheus.CounterVec
	Documents         prometheus.Counter
	Plugins           prometheus.Gauge
	MarkupConversions *prometheus.CounterVec
}

// New creates collectors registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ResourceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resource_duration_seconds",
				Help:      "Time spent running a processing resource on one document",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ResourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resource_errors_total",
				Help:      "Total number of processing resource failures",
			},
			[]string{"kind"},
		),
		Annotations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "annotations_total",
				Help:      "Total number of annotations created",
			},
			[]string{"type"},
		),
		Documents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Total number of documents run through a pipeline",
		}),
		Plugins: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plugins_registered",
			Help:      "Number of plugin directories registered",
		}),
		MarkupConversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "markup_conversions_total",
				Help:      "Total number of markup conversions",
			},
			[]string{"grammar", "outcome"},
		),
	}
}

// ObserveResource records one resource run.
func (m *Metrics) ObserveResource(kind string, d time.Duration, err error) {
	m.ResourceDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err != nil {
		m.ResourceErrors.WithLabelValues(kind).Inc()
	}
}

// AddAnnotations counts n new annotations of a type.
func (m *Metrics) AddAnnotations(typ string, n int) {
	if n > 0 {
		m.Annotations.WithLabelValues(typ).Add(float64(n))
	}
}

// ObserveConversion records one markup conversion.
func (m *Metrics) ObserveConversion(grammar string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.MarkupConversions.WithLabelValues(grammar, outcome).Inc()
}

// Sample is one gathered value. Histograms report their observation count.
type Sample struct {
	Name   string
	Labels string // "k=v,k=v", sorted
	Value  float64
}

func (s Sample) String() string {
	if s.Labels == "" {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, s.Labels, s.Value)
}

// Summary gathers every non-empty series, sorted by name then labels.
func (m *Metrics) Summary() ([]Sample, error) {
	return Summarize(m.Registry)
}

// Summarize gathers every non-empty series of g, sorted by name then labels.
func Summarize(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			pairs := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(pairs)

			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				value = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				value = float64(metric.GetHistogram().GetSampleCount())
			}
			if value == 0 {
				continue
			}
			out = append(out, Sample{Name: mf.GetName(), Labels: strings.Join(pairs, ","), Value: value})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}
