// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InvoicesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_invoices_processed_total",
			Help: "Total number of invoices evaluated by the follow-up processor",
		},
		[]string{"outcome"},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_messages_sent_total",
			Help: "Total number of follow-up messages delivered per channel",
		},
		[]string{"channel", "stage"},
	)

	ChannelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_channel_failures_total",
			Help: "Total number of failed delivery attempts per channel",
		},
		[]string{"channel"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "followup_run_duration_seconds",
			Help: "Duration of a full follow-up processor pass in seconds",
		},
	)
)
