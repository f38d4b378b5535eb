package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "market_monitor"
	subsystem = "telegram_bot"
)

// BotMetrics tracks command traffic across chats
type BotMetrics struct {
	CommandsProcessed  prometheus.Counter
	MessagesHandled    prometheus.Counter
	ChannelsCount      prometheus.Gauge
	ChannelNames       *prometheus.CounterVec
	ChannelsSet        map[int64]string
	MessagesPerChannel *prometheus.CounterVec
	Mutex              sync.Mutex
}

// AlertMetrics tracks the evaluation loop
type AlertMetrics struct {
	Cycles           prometheus.Counter
	CycleFailures    prometheus.Counter
	CycleDuration    prometheus.Histogram
	AlertsCreated    *prometheus.CounterVec
	AlertsFired      *prometheus.CounterVec
	AlertsDelivered  prometheus.Counter
	DeliveryFailures prometheus.Counter
	FetchFailures    *prometheus.CounterVec
	ActiveAlerts     prometheus.Gauge
	Subscribers      prometheus.Gauge
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		ChannelsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "channels_count",
			Help:      "The current number of unique channels the bot is operating in",
		}),
		ChannelNames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "channel_names",
				Help:      "Tracks channels the bot has interacted with",
			},
			[]string{"chat_id", "chat_name"},
		),
		MessagesPerChannel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "messages_per_channel",
				Help:      "The total number of messages handled per channel",
			},
			[]string{"chat_id", "chat_name"},
		),
		ChannelsSet: make(map[int64]string),
	}

	reg.MustRegister(
		m.CommandsProcessed,
		m.MessagesHandled,
		m.ChannelsCount,
		m.ChannelNames,
		m.MessagesPerChannel,
	)
	return m
}

// SeenChannel records a chat the first time it sends a command
func (m *BotMetrics) SeenChannel(chatID int64, chatName string) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	if _, exists := m.ChannelsSet[chatID]; !exists {
		m.ChannelsSet[chatID] = chatName
		m.ChannelsCount.Set(float64(len(m.ChannelsSet)))
		m.ChannelNames.WithLabelValues(formatChatID(chatID), chatName).Inc()
	}
}

func NewAlertMetrics(reg prometheus.Registerer) *AlertMetrics {
	sub := "alerts"
	m := &AlertMetrics{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "cycles_total",
			Help:      "The total number of evaluation passes",
		}),
		CycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "cycle_failures_total",
			Help:      "Passes aborted because of a store invariant violation or panic",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one evaluation pass",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "created_total",
			Help:      "Alerts accepted into the store",
		}, []string{"class"}),
		AlertsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "fired_total",
			Help:      "Alerts whose target was reached",
		}, []string{"class"}),
		AlertsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "delivered_total",
			Help:      "Fired alerts successfully notified and removed",
		}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "delivery_failures_total",
			Help:      "Fired alerts whose notification failed and were kept for retry",
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "fetch_failures_total",
			Help:      "Instrument price fetches that failed during a pass",
		}, []string{"class"}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "active",
			Help:      "Alerts currently waiting to fire",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: sub,
			Name:      "subscribers",
			Help:      "Subscribers with at least one active alert",
		}),
	}

	reg.MustRegister(
		m.Cycles,
		m.CycleFailures,
		m.CycleDuration,
		m.AlertsCreated,
		m.AlertsFired,
		m.AlertsDelivered,
		m.DeliveryFailures,
		m.FetchFailures,
		m.ActiveAlerts,
		m.Subscribers,
	)
	return m
}
