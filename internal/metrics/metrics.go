// Package metrics exposes Prometheus counters for batch audit runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/branchaudit/internal/schema"
)

// Collector aggregates run outcomes on its own registry so tests and
// concurrent batches never collide on the default global one.
type Collector struct {
	registry        *prometheus.Registry
	auditsTotal     *prometheus.CounterVec
	retrievalsTotal *prometheus.CounterVec
	findingsTotal   *prometheus.CounterVec
	auditDuration   prometheus.Histogram
}

// NewCollector returns a Collector with a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		auditsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "branchaudit_audits_total",
			Help: "Completed audit runs by terminal state and risk level",
		}, []string{"state", "risk_level"}),
		retrievalsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "branchaudit_retrievals_total",
			Help: "Content retrieval outcomes by status and source",
		}, []string{"status", "source"}),
		findingsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "branchaudit_findings_total",
			Help: "Classification findings by severity",
		}, []string{"severity"}),
		auditDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "branchaudit_audit_duration_seconds",
			Help:    "Wall time per audit run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordAudit folds one completed report into the counters.
// Safe to call on a nil Collector.
func (c *Collector) RecordAudit(report *schema.Report, duration time.Duration) {
	if c == nil {
		return
	}
	c.auditsTotal.WithLabelValues(string(report.State), string(report.Summary.RiskLevel)).Inc()
	c.retrievalsTotal.WithLabelValues(string(report.Retrieval.Status), string(report.Retrieval.Source)).Inc()
	for _, f := range report.Findings {
		c.findingsTotal.WithLabelValues(string(f.Severity)).Inc()
	}
	c.auditDuration.Observe(duration.Seconds())
}

// Handler serves the collector's registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
