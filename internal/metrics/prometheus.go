package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirper_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chirper_api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chirper_api_auth_failures_total",
			Help: "Total number of API authentication failures",
		},
	)
)

// Chirp and event metrics
var (
	ChirpsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chirper_chirps_created_total",
			Help: "Total number of chirps persisted",
		},
	)

	EventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirper_events_dispatched_total",
			Help: "Total number of domain events dispatched",
		},
		[]string{"event"},
	)

	EventHandlerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirper_event_handler_errors_total",
			Help: "Total number of subscriber failures by event",
		},
		[]string{"event"},
	)
)

// Fan-out and notification metrics
var (
	FanoutRecipientsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chirper_fanout_recipients_total",
			Help: "Total number of notification jobs enqueued by fan-out",
		},
	)

	FanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chirper_fanout_duration_seconds",
			Help:    "Duration of one fan-out page",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirper_notifications_total",
			Help: "Total number of notification delivery attempts by outcome",
		},
		[]string{"channel", "result"}, // sent, failed, skipped
	)

	NotificationSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chirper_notification_send_duration_seconds",
			Help:    "Duration of a single provider send",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ArchiveErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chirper_archive_errors_total",
			Help: "Total number of rendered notifications that failed to archive",
		},
	)
)

// Database metrics
var (
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chirper_db_connections_active",
			Help: "Number of acquired database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chirper_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
