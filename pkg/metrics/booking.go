package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records webhook-driven booking outcomes.
type BookingMetrics struct {
	duration  *prometheus.HistogramVec
	confirmed prometheus.Counter
	failed    prometheus.Counter
	duplicate prometheus.Counter
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_webhook_duration_seconds",
		Help:    "Duration of payment webhook booking handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	confirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_confirmed_total",
		Help: "Supplier orders confirmed after payment.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_failed_total",
		Help: "Supplier order failures after payment.",
	})
	duplicate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_duplicate_delivery_total",
		Help: "Payment webhook redeliveries suppressed by the idempotency claim.",
	})
	reg.MustRegister(duration, confirmed, failed, duplicate)
	return &BookingMetrics{
		duration:  duration,
		confirmed: confirmed,
		failed:    failed,
		duplicate: duplicate,
	}
}

// ObserveDuration records webhook handling time for the given outcome.
func (b *BookingMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	b.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncConfirmed increments the confirmed booking counter.
func (b *BookingMetrics) IncConfirmed() {
	if b == nil || b.confirmed == nil {
		return
	}
	b.confirmed.Inc()
}

// IncFailed increments the failed booking counter.
func (b *BookingMetrics) IncFailed() {
	if b == nil || b.failed == nil {
		return
	}
	b.failed.Inc()
}

// IncDuplicate increments the suppressed redelivery counter.
func (b *BookingMetrics) IncDuplicate() {
	if b == nil || b.duplicate == nil {
		return
	}
	b.duplicate.Inc()
}
