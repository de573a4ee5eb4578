package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversationsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_started_total",
			Help: "Total number of conversations started",
		},
	)

	conversationsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversations_closed_total",
			Help: "Total number of gracefully closed conversations",
		},
		[]string{"reason"},
	)

	conversationsRevived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_revived_total",
			Help: "Total number of ghosted conversations revived by a message",
		},
	)

	messagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversation_messages_sent_total",
			Help: "Total number of messages sent",
		},
	)
)

func RecordConversationStarted() {
	conversationsStarted.Inc()
}

func RecordConversationClosed(reason string) {
	conversationsClosed.WithLabelValues(reason).Inc()
}

func RecordConversationRevived() {
	conversationsRevived.Inc()
}

func RecordMessageSent() {
	messagesSent.Inc()
}
