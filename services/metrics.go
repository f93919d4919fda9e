package services

import "github.com/prometheus/client_golang/prometheus"

var (
	checkInsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Total number of validated check-ins",
		},
		[]string{"type"},
	)
	pointsAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points credited to users",
		},
		[]string{"source"},
	)
	journeysEndedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeys_ended_total",
			Help: "Journeys reaching a terminal state",
		},
		[]string{"outcome"},
	)
)

// InitMetrics registers the domain metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(checkInsTotal)
	prometheus.MustRegister(pointsAwardedTotal)
	prometheus.MustRegister(journeysEndedTotal)
}
