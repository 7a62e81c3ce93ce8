package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Support-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Chat turns by the flow that handled them
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "turns_total",
			Help:      "Chat turns processed, labelled by routed flow",
		},
		[]string{"flow"},
	)

	// Turn processing duration
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "turn_duration_seconds",
			Help:      "End to end turn processing duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"flow"},
	)

	// Ticket resolutions
	TicketResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "ticket_resolutions_total",
			Help:      "Ticket resolution attempts by outcome",
		},
		[]string{"outcome"},
	)

	// KYC stage outcomes
	KycStagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "kyc_stages_total",
			Help:      "KYC stage submissions by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	// Extraction backend failures
	ExtractionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "extraction_failures_total",
			Help:      "Extraction backend failures by capability",
		},
		[]string{"capability"},
	)

	// Sessions
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "sessions_created_total",
			Help:      "Total sessions created",
		},
	)

	SessionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "sessions_closed_total",
			Help:      "Sessions closed, labelled by reason",
		},
		[]string{"reason"},
	)

	// Escalations to a human agent
	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "escalations_total",
			Help:      "Conversations escalated to a human agent by reason",
		},
		[]string{"reason"},
	)

	// External collaborator health gauge
	CollaboratorHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "collaborator_health",
			Help:      "External collaborator health status (1=healthy, 0=unhealthy)",
		},
		[]string{"collaborator"},
	)

	// Active SSE progress streams
	ActiveProgressStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "betline",
			Subsystem: "support_api",
			Name:      "active_progress_streams",
			Help:      "Currently open SSE progress streams",
		},
	)
)

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordTurn records a processed chat turn and its duration
func RecordTurn(flow string, durationSec float64) {
	if flow == "" {
		flow = "unknown"
	}
	TurnsTotal.WithLabelValues(flow).Inc()
	TurnDuration.WithLabelValues(flow).Observe(durationSec)
}

// RecordTicketResolution records a ticket resolution outcome
func RecordTicketResolution(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	TicketResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordKycStage records a KYC stage submission outcome
func RecordKycStage(stage, outcome string) {
	if stage == "" {
		stage = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	KycStagesTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordEscalation records an escalation to a human agent
func RecordEscalation(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	EscalationsTotal.WithLabelValues(reason).Inc()
}

// SetCollaboratorHealth sets the health status of an external collaborator
func SetCollaboratorHealth(collaborator string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	CollaboratorHealth.WithLabelValues(collaborator).Set(val)
}
