// Package metrics holds the Prometheus collectors of a crawl run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      prometheus.Counter
	QuotesTotal     prometheus.Counter
	DumpsTotal      prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	PageDuration    prometheus.Histogram
	LastRunDuration prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotecrawl_pages_visited_total",
		Help: "Total listing pages parsed.",
	})
	quotes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotecrawl_quotes_extracted_total",
		Help: "Total quote records extracted.",
	})
	dumps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotecrawl_page_dumps_total",
		Help: "Total raw page dumps written.",
	})
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotecrawl_errors_total",
			Help: "Total crawl failures by error code.",
		},
		[]string{"code"},
	)
	pageDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quotecrawl_page_duration_seconds",
		Help:    "Time spent per page, from snapshot to the next page being loaded.",
		Buckets: prometheus.DefBuckets,
	})
	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quotecrawl_run_duration_seconds",
		Help: "Wall time of the last crawl run.",
	})

	registry.MustRegister(pages, quotes, dumps, errorsTotal, pageDuration, runDuration)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		QuotesTotal:     quotes,
		DumpsTotal:      dumps,
		ErrorsTotal:     errorsTotal,
		PageDuration:    pageDuration,
		LastRunDuration: runDuration,
	}
}

// ObservePage records one parsed page and the quotes it produced.
func (m *Metrics) ObservePage(quotes int, d time.Duration) {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
	m.QuotesTotal.Add(float64(quotes))
	m.PageDuration.Observe(d.Seconds())
}

// IncDump increments the page dump counter.
func (m *Metrics) IncDump() {
	if m == nil {
		return
	}
	m.DumpsTotal.Inc()
}

// IncError increments the errors counter for a code label.
func (m *Metrics) IncError(code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "UNKNOWN"
	}
	m.ErrorsTotal.WithLabelValues(code).Inc()
}

// SetRunDuration records the wall time of the run.
func (m *Metrics) SetRunDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.LastRunDuration.Set(d.Seconds())
}

// WriteFile writes every metric to path in the text exposition format,
// atomically replacing the file.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
