package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Queue metrics, labelled by job kind.
var (
	MessagesEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirper_queue_jobs_enqueued_total",
			Help: "Total number of jobs enqueued",
		},
		[]string{"kind"},
	)

	MessagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirper_queue_jobs_processed_total",
			Help: "Total number of jobs processed by outcome",
		},
		[]string{"kind", "status"}, // done, retry, dlq
	)

	MessageProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chirper_queue_job_duration_seconds",
			Help:    "Duration of job handler invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	DLQMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirper_queue_dlq_jobs_total",
			Help: "Total number of jobs moved to the DLQ",
		},
		[]string{"kind", "reason"}, // permanent, exhausted
	)
)
