// internal/nudge/metrics.go

package nudge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nudgesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conversation_nudges_sent_total",
		Help: "Total number of soft conversation nudges delivered",
	})

	nudgesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conversation_nudges_skipped_total",
		Help: "Total number of nudges suppressed by the per-pair cooldown",
	})

	remindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghosting_reminders_sent_total",
		Help: "Total number of escalated ghosting reminders delivered",
	})
)

func RecordNudgeSent() {
	nudgesSentTotal.Inc()
}

func RecordNudgeSkipped() {
	nudgesSkippedTotal.Inc()
}

func RecordReminderSent() {
	remindersSentTotal.Inc()
}
