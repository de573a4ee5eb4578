// internal/ghosting/metrics.go

package ghosting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ghostingEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghosting_events_recorded_total",
		Help: "Total number of conversations marked as ghosted",
	})

	trustRecalculationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trust_signal_recalculations_total",
		Help: "Total number of trust signal recalculations performed",
	})

	visibilityScoreGauge = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "visibility_score_computed",
		Help:    "Distribution of visibility scores produced by the detector",
		Buckets: []float64{0.1, 0.25, 0.4, 0.55, 0.7, 0.85, 1.0},
	})
)

func RecordGhostingEvent() {
	ghostingEventsTotal.Inc()
}

func RecordTrustRecalculation() {
	trustRecalculationsTotal.Inc()
}

func ObserveVisibilityScore(score float64) {
	visibilityScoreGauge.Observe(score)
}
