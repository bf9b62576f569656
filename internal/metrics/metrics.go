// Package metrics exposes per-run counters through a small sink interface
// so components never depend on Prometheus directly.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter names incremented by the pipeline.
const (
	ItemsProcessed = "scribe_items_processed_total"
	ItemsFailed    = "scribe_items_failed_total"
	RetryAttempts  = "scribe_retry_attempts_total"
	Runs           = "scribe_runs_total"
)

// Sink receives counter increments. Labels may be nil.
type Sink interface {
	Inc(name string, labels map[string]string)
}

// Nop discards all increments.
type Nop struct{}

func (Nop) Inc(string, map[string]string) {}

// Prometheus implements Sink over a private registry.
type Prometheus struct {
	registry  *prometheus.Registry
	processed prometheus.Counter
	failed    *prometheus.CounterVec
	retries   *prometheus.CounterVec
	runs      *prometheus.CounterVec
}

// NewPrometheus registers the pipeline counters on a fresh registry.
func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	p := &Prometheus{
		registry: registry,
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: ItemsProcessed,
			Help: "Recordings processed successfully.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ItemsFailed,
			Help: "Recordings that failed, by error code.",
		}, []string{"code"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RetryAttempts,
			Help: "Retry attempts, by operation.",
		}, []string{"operation"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: Runs,
			Help: "Completed runs, by outcome.",
		}, []string{"outcome"}),
	}
	registry.MustRegister(p.processed, p.failed, p.retries, p.runs)
	return p
}

// Inc implements Sink.
func (p *Prometheus) Inc(name string, labels map[string]string) {
	switch name {
	case ItemsProcessed:
		p.processed.Inc()
	case ItemsFailed:
		p.failed.With(prometheus.Labels{"code": labelValue(labels, "code")}).Inc()
	case RetryAttempts:
		p.retries.With(prometheus.Labels{"operation": labelValue(labels, "operation")}).Inc()
	case Runs:
		p.runs.With(prometheus.Labels{"outcome": labelValue(labels, "outcome")}).Inc()
	}
}

// Handler serves the registry in Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func labelValue(labels map[string]string, key string) string {
	if value, ok := labels[key]; ok && value != "" {
		return value
	}
	return "unknown"
}
