package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/kintree/pkg/observability"
)

var (
	// httpRequests counts completed requests by route pattern and status.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kintree",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Completed HTTP requests",
	}, []string{"method", "path", "code"})

	// httpDuration measures request latency by route pattern.
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kintree",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// rebuildDuration measures full rebuild latency (build + layout).
	rebuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kintree",
		Subsystem: "pipeline",
		Name:      "rebuild_duration_seconds",
		Help:      "Tree rebuild latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"status"})

	// renderDuration measures artifact generation latency.
	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kintree",
		Subsystem: "pipeline",
		Name:      "render_duration_seconds",
		Help:      "Artifact render latency in seconds",
		Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"status"})

	// treeSize tracks the size of the last rebuilt tree.
	treeSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kintree",
		Subsystem: "pipeline",
		Name:      "tree_size",
		Help:      "Record counts from the last rebuild",
	}, []string{"kind"})

	// cacheEvents counts cache hits, misses, and writes per stage.
	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kintree",
		Subsystem: "cache",
		Name:      "events_total",
		Help:      "Cache events by stage",
	}, []string{"stage", "event"})
)

// RegisterMetrics installs Prometheus-backed observability hooks. Call once
// at startup, before the server or pipeline run.
func RegisterMetrics() {
	observability.SetPipelineHooks(promPipelineHooks{})
	observability.SetCacheHooks(promCacheHooks{})
	observability.SetHTTPHooks(promHTTPHooks{})
}

// MetricsHandler returns the /metrics endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

type promPipelineHooks struct{}

func (promPipelineHooks) OnRebuildStart(_ context.Context, memberCount, relationshipCount int) {
	treeSize.WithLabelValues("members").Set(float64(memberCount))
	treeSize.WithLabelValues("relationships").Set(float64(relationshipCount))
}

func (promPipelineHooks) OnRebuildComplete(_ context.Context, placedCount int, duration time.Duration, err error) {
	rebuildDuration.WithLabelValues(statusLabel(err)).Observe(duration.Seconds())
	if err == nil {
		treeSize.WithLabelValues("placed").Set(float64(placedCount))
	}
}

func (promPipelineHooks) OnRenderStart(context.Context, []string) {}

func (promPipelineHooks) OnRenderComplete(_ context.Context, _ []string, duration time.Duration, err error) {
	renderDuration.WithLabelValues(statusLabel(err)).Observe(duration.Seconds())
}

type promCacheHooks struct{}

func (promCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (promCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (promCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	cacheEvents.WithLabelValues(keyType, "set").Inc()
}

type promHTTPHooks struct{}

func (promHTTPHooks) OnRequest(context.Context, string, string) {}

func (promHTTPHooks) OnResponse(_ context.Context, method, path string, statusCode int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
