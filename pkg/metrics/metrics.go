// Package metrics 定义了 Prometheus 指标。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qa_board"

var (
	// Registry 保存应用自身的指标。
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "generations_total",
			Help:      "Total number of AI commentary generations.",
		},
		[]string{"status"},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "generation_duration_seconds",
			Help:      "Latency of AI commentary generations.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~64s
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		generations,
		generationDuration,
	)
}

// Handler 返回 /metrics 的 http.Handler。
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录一次 HTTP 请求。path 应当是路由模板，避免标签基数膨胀。
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration 记录一次 LLM 调用的结果与耗时。
func RecordGeneration(err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	generations.WithLabelValues(status).Inc()
	generationDuration.Observe(duration.Seconds())
}
