package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "gitpages"

	metricLabelPage    = "page"
	metricLabelRoute   = "route"
	metricLabelStatus  = "status"
	metricLabelTrigger = "trigger"
)

// Trigger label values for the update metrics
const (
	TriggerScheduler = "scheduler"
	TriggerWebhook   = "webhook"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// RequestCounter counts the number of content requests per route and status
	RequestCounter = newCounterVec(
		"request_count",
		"Count of content requests per route and response status",
		metricLabelRoute, metricLabelStatus,
	)
	// RequestDuration observes the duration of content requests
	RequestDuration = newSummaryVec(
		"request_duration_seconds",
		"Seconds to resolve a page, look up a file and write the response",
		metricLabelRoute, metricLabelStatus,
	)
	// UpdatesCompletedCounter counts successfully completed page updates
	UpdatesCompletedCounter = newCounterVec(
		"updates_completed_count",
		"Number of page updates that were successfully completed",
		metricLabelPage, metricLabelTrigger,
	)
	// UpdatesFailedCounter counts page updates that had an error
	UpdatesFailedCounter = newCounterVec(
		"updates_failed_count",
		"Number of page updates that failed due to an error",
		metricLabelPage, metricLabelTrigger,
	)
	// UpdateDuration observes the duration of each page update, fetch included
	UpdateDuration = newSummaryVec(
		"update_duration_seconds",
		"Duration in seconds for each page update call",
		metricLabelPage, metricLabelTrigger,
	)
	// SnapshotFilesGauge keeps track of the number of files currently served per page
	SnapshotFilesGauge = newGaugeVec(
		"snapshot_files_total",
		"Number of files in the currently served snapshot of a page",
		metricLabelPage,
	)
	// SnapshotBytesGauge keeps track of the snapshot size in bytes per page
	SnapshotBytesGauge = newGaugeVec(
		"snapshot_bytes_total",
		"Cumulative byte size of the currently served snapshot of a page",
		metricLabelPage,
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
