package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "api_requests_total",
			Help:      "Count of hotel API requests by method, endpoint and outcome.",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "booking_transitions_total",
			Help:      "Count of booking transition requests by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	sessionTeardowns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "innkeeper",
			Name:      "session_teardowns_total",
			Help:      "Count of sessions cleared after a 401 from the API.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, bookingTransitions, sessionTeardowns)
	})
}

func IncAPIRequest(method, endpoint, outcome string) {
	apiRequests.WithLabelValues(method, endpoint, outcome).Inc()
}

func IncBookingTransition(action, outcome string) {
	bookingTransitions.WithLabelValues(action, outcome).Inc()
}

func IncSessionTeardown() {
	sessionTeardowns.Inc()
}
