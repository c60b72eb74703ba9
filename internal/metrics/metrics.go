package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autofix",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autofix",
			Name:      "booking_events_total",
			Help:      "Booking lifecycle events by type.",
		},
		[]string{"event"},
	)

	bookingsAssigned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autofix",
			Name:      "bookings_auto_assigned_total",
			Help:      "Bookings assigned by the round-robin distribution.",
		},
	)

	notificationsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autofix",
			Name:      "notifications_recorded_total",
			Help:      "Audit notifications appended.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingEvents, bookingsAssigned, notificationsRecorded)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingEvent increments the counter for a lifecycle event type.
func IncBookingEvent(event string) {
	bookingEvents.WithLabelValues(event).Inc()
}

// AddAssigned adds the size of an auto-assign batch.
func AddAssigned(n int) {
	bookingsAssigned.Add(float64(n))
}

// IncNotification counts one audit append.
func IncNotification() {
	notificationsRecorded.Inc()
}
