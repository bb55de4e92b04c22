package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"sync"
)

const (
	namespace    = "coinpaprika"
	botSubsystem = "telegram_bot"
	subsystem    = "alerts"
)

// BotMetrics groups the collectors for chat traffic
type BotMetrics struct {
	CommandsProcessed  prometheus.Counter
	MessagesHandled    prometheus.Counter
	ChannelsCount      prometheus.Gauge
	ChannelNames       *prometheus.CounterVec
	MessagesPerChannel *prometheus.CounterVec

	mutex       sync.Mutex
	channelsSet map[int64]string
}

// AlertMetrics groups the collectors for the alert check cycle
type AlertMetrics struct {
	Cycles               prometheus.Counter
	LookupFailures       prometheus.Counter
	Triggered            prometheus.Counter
	NotificationFailures prometheus.Counter
	Skipped              prometheus.Counter
	Active               prometheus.Gauge
	CycleDuration        prometheus.Histogram
}

var (
	Bot    = newBotMetrics()
	Alerts = newAlertMetrics()
)

func init() {
	prometheus.MustRegister(
		Bot.CommandsProcessed,
		Bot.MessagesHandled,
		Bot.ChannelsCount,
		Bot.ChannelNames,
		Bot.MessagesPerChannel,
		Alerts.Cycles,
		Alerts.LookupFailures,
		Alerts.Triggered,
		Alerts.NotificationFailures,
		Alerts.Skipped,
		Alerts.Active,
		Alerts.CycleDuration,
	)
}

func newBotMetrics() *BotMetrics {
	return &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: botSubsystem,
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: botSubsystem,
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		ChannelsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: botSubsystem,
			Name:      "channels_count",
			Help:      "The current number of unique channels the bot is operating in",
		}),
		ChannelNames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: botSubsystem,
				Name:      "channel_names",
				Help:      "Tracks channels the bot has interacted with",
			},
			[]string{"chat_id", "chat_name"},
		),
		MessagesPerChannel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: botSubsystem,
				Name:      "messages_per_channel",
				Help:      "The total number of messages handled per channel",
			},
			[]string{"chat_id", "chat_name"},
		),
		channelsSet: make(map[int64]string),
	}
}

func newAlertMetrics() *AlertMetrics {
	return &AlertMetrics{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "check_cycles_total",
			Help:      "The total number of completed or aborted alert check cycles",
		}),
		LookupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lookup_failures_total",
			Help:      "The total number of cycles aborted by a failed price lookup",
		}),
		Triggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "triggered_total",
			Help:      "The total number of alerts that reached their target",
		}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_failures_total",
			Help:      "The total number of triggered alerts whose notification could not be delivered",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "skipped_total",
			Help:      "The total number of alert evaluations skipped because the quote was missing",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active",
			Help:      "The current number of active alerts",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "check_cycle_duration_seconds",
			Help:      "Duration of alert check cycles",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// TrackMessage counts a handled message and registers its channel on first sight
func (m *BotMetrics) TrackMessage(chatID int64, chatName string) {
	m.MessagesHandled.Inc()

	m.mutex.Lock()
	if _, exists := m.channelsSet[chatID]; !exists {
		m.channelsSet[chatID] = chatName
		m.ChannelsCount.Set(float64(len(m.channelsSet)))
		m.ChannelNames.WithLabelValues(fmt.Sprintf("%d", chatID), chatName).Inc()
	}
	m.mutex.Unlock()

	m.MessagesPerChannel.WithLabelValues(fmt.Sprintf("%d", chatID), chatName).Inc()
}
