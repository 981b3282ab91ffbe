// Package metrics exposes the Prometheus collectors for the leaderboard
// service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "leaderboard",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leaderboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leaderboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	scoreSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leaderboard",
			Subsystem: "scores",
			Name:      "submissions_total",
			Help:      "Total number of score submissions.",
		},
		[]string{"status"},
	)

	recomputeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leaderboard",
			Subsystem: "ranks",
			Name:      "recompute_runs_total",
			Help:      "Total number of rank recomputation passes.",
		},
		[]string{"trigger", "success"},
	)

	recomputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leaderboard",
			Subsystem: "ranks",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of rank recomputation passes.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"trigger"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leaderboard",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Read cache lookups by outcome.",
		},
		[]string{"key_kind", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		scoreSubmissions,
		recomputeRuns,
		recomputeDuration,
		cacheLookups,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordSubmission records the outcome of one score submission.
func RecordSubmission(status string) {
	scoreSubmissions.WithLabelValues(status).Inc()
}

// RecordRecompute records one rank recomputation pass.
func RecordRecompute(trigger string, duration time.Duration, success bool) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	result := "false"
	if success {
		result = "true"
	}
	recomputeRuns.WithLabelValues(trigger, result).Inc()
	recomputeDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordCacheLookup records a read cache lookup outcome (hit, miss, error).
func RecordCacheLookup(keyKind, outcome string) {
	cacheLookups.WithLabelValues(keyKind, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses path parameters so metric labels stay bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/api"
	}
	switch parts[1] {
	case "users":
		if len(parts) == 2 {
			return "/api/users"
		}
		if len(parts) >= 4 && parts[3] == "rank" {
			return "/api/users/:id/rank"
		}
		return "/api/users/:id"
	case "leaderboard":
		if len(parts) >= 3 {
			return "/api/leaderboard/" + parts[2]
		}
		return "/api/leaderboard"
	default:
		return "/api/" + parts[1]
	}
}
