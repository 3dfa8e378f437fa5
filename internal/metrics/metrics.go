package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carpool"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	SearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "search_latency_seconds", Help: "Ride search latency seconds",
	})
	SearchCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_candidates",
		Help:      "Rides returned by the store before scoring",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
	SearchMatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_matches",
		Help:      "Rides admitted after scoring",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
	})

	SeatOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "seat_operations_total", Help: "Seat ledger operations by outcome"},
		[]string{"op", "result"},
	)
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "booking_transitions_total", Help: "Booking request transitions by outcome"},
		[]string{"transition", "result"},
	)
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total", Help: "Ride events handed to the event sink"},
		[]string{"kind", "result"},
	)
	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "notifications_delivered_total", Help: "Notifications delivered by channel"},
		[]string{"channel"},
	)
	RealtimeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "realtime_sessions", Help: "Connected websocket sessions",
	})
	RouteCache = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "route_cache_total", Help: "Route cache lookups by result"},
		[]string{"result"},
	)
)

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
