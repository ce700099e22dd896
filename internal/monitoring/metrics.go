package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPTotalRequests is the total number of http requests.
	HTTPTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusdesk_http_total_requests",
			Help: "Total number of http requests",
		},
		[]string{"path", "method", "status_code"},
	)

	// HTTPRequestDuration is the duration of the http request.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "campusdesk_http_request_duration",
			Help: "Duration of the http request",
		},
		[]string{"path", "method", "status_code"},
	)

	// TicketTransitions counts committed status transitions by new status.
	TicketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusdesk_ticket_transitions_total",
			Help: "Committed ticket status transitions",
		},
		[]string{"status"},
	)

	// NotifyFailures counts swallowed notification delivery failures.
	NotifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusdesk_notify_failures_total",
			Help: "Best-effort notification failures",
		},
		[]string{"channel"},
	)
)
