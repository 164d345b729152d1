package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_messages_submitted_total",
			Help: "Total number of messages submitted for dispatch (count)",
		},
		[]string{"status"},
	)

	PartsDispatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_parts_dispatched_total",
			Help: "Total number of message parts handed to the transport (count)",
		},
	)

	CompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_completions_total",
			Help: "Total number of per-part completion reports processed (count)",
		},
		[]string{"channel", "outcome"},
	)

	DroppedCompletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_dropped_completions_total",
			Help: "Completion reports with no matching subscription (count)",
		},
	)

	InflightSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_inflight_subscriptions",
			Help: "Subscriptions currently awaiting completions (count)",
		},
	)

	SubscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_subscriptions_expired_total",
			Help: "Subscriptions force-finalized by the expiry sweeper (count)",
		},
	)

	SendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_send_duration_ms",
			Help:    "Duration of the synchronous part of a send in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	ReassemblyPartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_reassembly_parts_total",
			Help: "Inbound parts processed by the reassembler (count)",
		},
		[]string{"status"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_events_published_total",
			Help: "Lifecycle events published to the broker (count)",
		},
		[]string{"topic"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"component"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	JournalWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_journal_writes_total",
			Help: "Journal writes by operation and status (count)",
		},
		[]string{"operation", "status"},
	)
)

func RegisterDispatchMetrics() {
	prometheus.MustRegister(MessagesSubmittedTotal)
	prometheus.MustRegister(PartsDispatchedTotal)
	prometheus.MustRegister(CompletionsTotal)
	prometheus.MustRegister(DroppedCompletionsTotal)
	prometheus.MustRegister(InflightSubscriptions)
	prometheus.MustRegister(SubscriptionsExpiredTotal)
	prometheus.MustRegister(SendDuration)
}

func RegisterTransportMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterReassemblyMetrics() {
	prometheus.MustRegister(ReassemblyPartsTotal)
}

func RegisterAPIMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func RegisterEventMetrics() {
	prometheus.MustRegister(EventsPublishedTotal)
}

func RegisterJournalMetrics() {
	prometheus.MustRegister(JournalWritesTotal)
}

func ObserveSendDuration(duration time.Duration) {
	SendDuration.Observe(float64(duration.Milliseconds()))
}

func IncJournalWrite(operation, status string) {
	JournalWritesTotal.WithLabelValues(operation, status).Inc()
}
