package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_code_lookups_total",
		Help: "Code lookups at the entry point, by result",
	}, []string{"result"})

	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_mark_passed_total",
		Help: "Check-in attempts, by result (passed, already_passed, not_found)",
	}, []string{"result"})

	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_registrations_total",
		Help: "Attendees registered by an admin",
	})

	StatusOverrides = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_status_overrides_total",
		Help: "Admin status overrides, by target status",
	}, []string{"status"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_logins_total",
		Help: "Login attempts, by result",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkin_http_request_duration_seconds",
		Help:    "HTTP request latency, by route pattern and status code",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})

	databaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkin_database_query_duration_seconds",
		Help:    "Database query latency, by operation",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})
)
