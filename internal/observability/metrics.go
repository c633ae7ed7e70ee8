package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	schedulesBookedTotal    *prometheus.CounterVec
	schedulingConflictTotal *prometheus.CounterVec
	endorsementsTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esm_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "esm_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esm_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		schedulesBookedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esm_schedules_booked_total",
			Help: "Total number of interview schedules successfully booked.",
		}, []string{"operation"})

		schedulingConflictTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esm_scheduling_conflicts_total",
			Help: "Total number of booking attempts rejected by conflict detection.",
		}, []string{"operation"})

		endorsementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esm_endorsements_total",
			Help: "Total number of endorsement decisions applied.",
		}, []string{"decision"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			schedulesBookedTotal,
			schedulingConflictTotal,
			endorsementsTotal,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SchedulesBooked exposes the counter for successful bookings.
func SchedulesBooked() *prometheus.CounterVec {
	RegisterMetrics()
	return schedulesBookedTotal
}

// SchedulingConflicts exposes the counter for rejected booking attempts.
func SchedulingConflicts() *prometheus.CounterVec {
	RegisterMetrics()
	return schedulingConflictTotal
}

// Endorsements exposes the counter for endorsement decisions.
func Endorsements() *prometheus.CounterVec {
	RegisterMetrics()
	return endorsementsTotal
}
