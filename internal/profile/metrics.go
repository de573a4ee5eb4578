// internal/profile/metrics.go

package profile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pausesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dating_pauses_total",
		Help: "Total number of successful dating pauses",
	})

	resumesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dating_resumes_total",
		Help: "Total number of dating resumes",
	})
)

func RecordPause() {
	pausesTotal.Inc()
}

func RecordResume() {
	resumesTotal.Inc()
}
