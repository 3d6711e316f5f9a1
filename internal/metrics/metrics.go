// Package metrics exposes Prometheus collectors for the lyricwiki
// client. A nil *Recorder is a valid no-op, so instrumentation stays
// optional for library consumers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the client's collectors, registered on the registry
// the consumer supplies.
type Recorder struct {
	pagesTotal     *prometheus.CounterVec
	fetchSeconds   *prometheus.HistogramVec
	parseFailures  *prometheus.CounterVec
	lyricsCacheHit prometheus.Counter
}

// New registers the client collectors with reg and returns the
// Recorder observing them.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		pagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricwiki_pages_total",
				Help: "Total pages fetched, labeled by page kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		fetchSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lyricwiki_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by page kind.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"kind"},
		),
		parseFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricwiki_parse_failures_total",
				Help: "Total pages that failed structural parsing, labeled by page kind.",
			},
			[]string{"kind"},
		),
		lyricsCacheHit: f.NewCounter(
			prometheus.CounterOpts{
				Name: "lyricwiki_lyrics_cache_hits_total",
				Help: "Total lyric reads served from a record's memo without a fetch.",
			},
		),
	}
}

// ObserveFetch records one fetch attempt and its latency.
func (r *Recorder) ObserveFetch(kind, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.pagesTotal.WithLabelValues(kind, outcome).Inc()
	r.fetchSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveParseFailure records a page that did not match its expected
// structure.
func (r *Recorder) ObserveParseFailure(kind string) {
	if r == nil {
		return
	}
	r.parseFailures.WithLabelValues(kind).Inc()
}

// ObserveLyricsCacheHit records a lyric read answered from the record
// memo.
func (r *Recorder) ObserveLyricsCacheHit() {
	if r == nil {
		return
	}
	r.lyricsCacheHit.Inc()
}
