package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type pollMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	merged   *prometheus.CounterVec
}

type cacheMetrics struct {
	entries *prometheus.GaugeVec
	members prometheus.Gauge
}

type standingsMetrics struct {
	duration *prometheus.HistogramVec
}

var (
	pollMetricsOnce sync.Once
	pollRegistry    *pollMetrics

	cacheMetricsOnce sync.Once
	cacheRegistry    *cacheMetrics

	standingsMetricsOnce sync.Once
	standingsRegistry    *standingsMetrics
)

// Poll returns the lazily-initialised registry tracking upstream Advent of
// Code fetches.
func Poll() *pollMetrics {
	pollMetricsOnce.Do(func() {
		pollRegistry = &pollMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "elf",
				Subsystem: "poll",
				Name:      "requests_total",
				Help:      "Total upstream leaderboard fetches segmented by source and outcome.",
			}, []string{"source", "outcome"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "elf",
				Subsystem: "poll",
				Name:      "duration_seconds",
				Help:      "Latency distribution of upstream leaderboard fetches.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"source"}),
			merged: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "elf",
				Subsystem: "poll",
				Name:      "entries_merged_total",
				Help:      "Count of completion facts merged into the cache per source.",
			}, []string{"source"}),
		}
		prometheus.MustRegister(
			pollRegistry.requests,
			pollRegistry.duration,
			pollRegistry.merged,
		)
	})
	return pollRegistry
}

// Observe records one upstream poll: its latency, how many previously unseen
// entries it contributed and whether it failed.
func (m *pollMetrics) Observe(source string, merged int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	source = labelOrUnknown(source)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(source, outcome).Inc()
	m.duration.WithLabelValues(source).Observe(duration.Seconds())
	if merged > 0 {
		m.merged.WithLabelValues(source).Add(float64(merged))
	}
}

// Cache returns the registry mirroring the in-memory board sizes.
func Cache() *cacheMetrics {
	cacheMetricsOnce.Do(func() {
		cacheRegistry = &cacheMetrics{
			entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "elf",
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Completion facts currently held per board.",
			}, []string{"board"}),
			members: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "elf",
				Subsystem: "cache",
				Name:      "members",
				Help:      "Distinct members seen on the private board.",
			}),
		}
		prometheus.MustRegister(cacheRegistry.entries, cacheRegistry.members)
	})
	return cacheRegistry
}

// Record updates the board size gauges after a merge.
func (m *cacheMetrics) Record(private, global, members int) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues("private").Set(float64(private))
	m.entries.WithLabelValues("global").Set(float64(global))
	m.members.Set(float64(members))
}

// Standings returns the registry timing standings computations.
func Standings() *standingsMetrics {
	standingsMetricsOnce.Do(func() {
		standingsRegistry = &standingsMetrics{
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "elf",
				Subsystem: "standings",
				Name:      "compute_duration_seconds",
				Help:      "Latency distribution of standings computations by kind.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"kind"}),
		}
		prometheus.MustRegister(standingsRegistry.duration)
	})
	return standingsRegistry
}

// Observe records how long one standings computation took.
func (m *standingsMetrics) Observe(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(labelOrUnknown(kind)).Observe(duration.Seconds())
}

func labelOrUnknown(label string) string {
	if label = strings.TrimSpace(label); label == "" {
		return "unknown"
	}
	return label
}
