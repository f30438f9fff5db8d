package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(
		smartChatRequests,
		degradations,
		uploads,
		requestDurationMs,
	)
}

var (
	smartChatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_smart_chat_requests_total",
			Help: "Smart-chat requests per resolved mode and per mode actually used.",
		},
		[]string{"resolved", "used"},
	)

	degradations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_degradations_total",
			Help: "Count of graceful degradations to chat, by reason.",
		},
		[]string{"reason"},
	)

	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_uploads_total",
			Help: "Document uploads by outcome status.",
		},
		[]string{"status"},
	)

	requestDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_request_duration_ms",
			Help:    "End-to-end strategy latency distribution in milliseconds.",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"mode"},
	)
)

func ObserveSmartChat(resolved, used string, elapsed time.Duration) {
	smartChatRequests.WithLabelValues(resolved, used).Inc()
	requestDurationMs.WithLabelValues(used).Observe(float64(elapsed.Milliseconds()))
}

func Degraded(reason string) {
	degradations.WithLabelValues(reason).Inc()
}

func UploadObserved(status string) {
	uploads.WithLabelValues(status).Inc()
}
