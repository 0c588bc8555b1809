package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "messages_written_total",
		Help:      "Messages durably stored.",
	})

	ConversationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "conversations_created_total",
		Help:      "Conversations created, by kind.",
	}, []string{"kind"})

	FreshnessFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "conversation_touch_failures_total",
		Help:      "Failed updated_at bumps after a message insert.",
	})

	DirectConversationDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "direct_conversation_duplicates_total",
		Help:      "Lookups that found more than one conversation for a user pair.",
	})

	NotifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "notify_failures_total",
		Help:      "Swallowed realtime delivery failures, by stage.",
	}, []string{"stage"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "deliveries_total",
		Help:      "Realtime publish attempts, by sink and result.",
	}, []string{"sink", "result"})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Name:      "realtime_connections",
		Help:      "Open websocket connections.",
	})
)

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
