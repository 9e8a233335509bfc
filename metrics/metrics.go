package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts logins by result (success|invalid|disabled|limited).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhs_staffing_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	// LifecycleEvents counts state changes on grants, nurses, documents, shifts and bookings.
	LifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhs_staffing_lifecycle_events_total",
			Help: "Record lifecycle transitions",
		},
		[]string{"entity", "event"},
	)

	// BookingConflicts counts bookings rejected because the shift was no longer open.
	BookingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nhs_staffing_booking_conflicts_total",
			Help: "Bookings rejected because the shift was not open",
		},
	)

	ExpiryNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhs_staffing_expiry_notifications_total",
			Help: "Document expiry notifications by result (sent|failed)",
		},
		[]string{"result"},
	)

	TrustCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhs_staffing_trust_cache_lookups_total",
			Help: "Approved-trust cache lookups by result (hit|miss|error)",
		},
		[]string{"result"},
	)

	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nhs_staffing_api_latency_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Lifecycle records one lifecycle event.
func Lifecycle(entity, event string) {
	LifecycleEvents.WithLabelValues(entity, event).Inc()
}
