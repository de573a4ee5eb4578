package policy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	limitChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_limit_checks_total",
			Help: "Total number of conversation-limit checks",
		},
		[]string{"result"},
	)

	pauseChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_pause_checks_total",
			Help: "Total number of pause-eligibility checks",
		},
		[]string{"result"},
	)

	activeConversations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policy_active_conversations",
			Help:    "Distribution of active-conversation counts observed at check time",
			Buckets: prometheus.LinearBuckets(0, 1, 6),
		},
	)
)

func RecordLimitCheck(allowed bool, count int) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	limitChecksTotal.WithLabelValues(result).Inc()
	activeConversations.Observe(float64(count))
}

func RecordPauseCheck(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	pauseChecksTotal.WithLabelValues(result).Inc()
}
