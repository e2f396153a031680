package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "inscricao_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inscricao_active_connections",
			Help: "Number of active connections",
		},
	)

	// FormSubmissions tracks form submissions by outcome
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inscricao_form_submissions_total",
			Help: "Number of form submissions by form and outcome",
		},
		[]string{"form", "outcome"},
	)

	// FlowTransitions tracks registration flow state changes
	FlowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inscricao_flow_transitions_total",
			Help: "Number of registration flow transitions",
		},
		[]string{"from", "to"},
	)

	// APIRequests tracks calls to the registration API
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inscricao_api_requests_total",
			Help: "Number of registration API calls by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	// APIRequestDuration tracks registration API latency
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inscricao_api_request_duration_seconds",
			Help:    "Duration of registration API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// ShareActions tracks invitation shares by channel
	ShareActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inscricao_share_actions_total",
			Help: "Number of invitation shares by channel",
		},
		[]string{"channel"},
	)

	// AuditLogs tracks audit trail writes
	AuditLogs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inscricao_audit_logs_total",
			Help: "Number of audit log entries by status",
		},
		[]string{"status"},
	)

	// RateLimitedSubmissions counts form posts rejected by the per-client limiter
	RateLimitedSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inscricao_rate_limited_submissions_total",
			Help: "Number of form submissions rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// RateLimiterClients is the number of client buckets kept by the submission limiter
	RateLimiterClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inscricao_rate_limiter_clients",
			Help: "Number of clients tracked by the submission rate limiter",
		},
	)
)
