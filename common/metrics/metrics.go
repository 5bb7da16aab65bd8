package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venue_booking_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venue_booking_http_request_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	CmsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "venue_booking_cms_request_seconds",
			Help:    "Duration of CMS requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	BookingOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venue_booking_submission_outcomes_total",
			Help: "Booking submissions by final saga state",
		},
		[]string{"outcome"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "venue_booking_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
