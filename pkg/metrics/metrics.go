// Package metrics collects prometheus counters for catalog traffic, updates
// and imports. modkeeper is a short-lived CLI, so metrics are written to a
// node-exporter textfile at exit instead of being served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arthur-debert/modkeeper/pkg/errors"
)

// Namespace prefixes every metric name.
const Namespace = "modkeeper"

// Result labels.
const (
	ResultOK          = "ok"
	ResultNoData      = "no_data"
	ResultError       = "error"
	ResultCached      = "cached"
	ResultUnavailable = "unavailable"
)

// Metrics holds every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	catalogQueries   *prometheus.CounterVec
	catalogDownloads *prometheus.CounterVec
	downloadedBytes  prometheus.Counter
	updatesAvailable prometheus.Gauge
	updatesApplied   *prometheus.CounterVec
	importResolved   *prometheus.CounterVec
	templateWrites   prometheus.Counter
	operationSeconds *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		catalogQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "catalog_queries_total",
			Help:      "Catalog metadata queries by result.",
		}, []string{"result"}),
		catalogDownloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "catalog_downloads_total",
			Help:      "Release downloads by result.",
		}, []string{"result"}),
		downloadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "catalog_downloaded_bytes_total",
			Help:      "Bytes downloaded from the catalog.",
		}),
		updatesAvailable: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "updates_available",
			Help:      "Updates found by the last scan.",
		}),
		updatesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "updates_applied_total",
			Help:      "Update items by result.",
		}, []string{"result"}),
		importResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "import_entries_total",
			Help:      "Manifest mod entries by classification.",
		}, []string{"classification"}),
		templateWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "template_writes_total",
			Help:      "Activation template writes.",
		}),
		operationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of scans, applies and imports.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) CatalogQuery(result string) {
	if m != nil {
		m.catalogQueries.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CatalogDownload(result string, bytes int) {
	if m == nil {
		return
	}
	m.catalogDownloads.WithLabelValues(result).Inc()
	if bytes > 0 {
		m.downloadedBytes.Add(float64(bytes))
	}
}

func (m *Metrics) UpdatesAvailable(n int) {
	if m != nil {
		m.updatesAvailable.Set(float64(n))
	}
}

func (m *Metrics) UpdateApplied(result string) {
	if m != nil {
		m.updatesApplied.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ImportEntry(classification string) {
	if m != nil {
		m.importResolved.WithLabelValues(classification).Inc()
	}
}

func (m *Metrics) TemplateWrite() {
	if m != nil {
		m.templateWrites.Inc()
	}
}

// Time returns a function observing the elapsed time for operation.
func (m *Metrics) Time(operation string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.operationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// WriteTextfile writes every collector in the textfile exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write metrics to %s", path)
	}
	return nil
}
