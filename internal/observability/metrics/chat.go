package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ThreadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_threads_created_total",
			Help: "Total number of threads created",
		},
	)

	MessagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_stored_total",
			Help: "Total number of messages stored by role",
		},
		[]string{"role"},
	)

	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_submissions_rejected_total",
			Help: "Total number of rejected submissions by reason",
		},
		[]string{"reason"},
	)

	GenerationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_generation_duration_seconds",
			Help:    "Duration of assistant reply generation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	GenerationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_generation_errors_total",
			Help: "Total number of failed assistant reply generations",
		},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_websocket_connections",
			Help: "Number of active websocket connections",
		},
	)
)
