package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
)

// MetricStore persists counter values between runs
type MetricStore interface {
	GetMetric(metricName string) (float64, error)
	SaveMetric(metricName string, value float64) error
	SaveMetricWithLabels(metricName, labelKey, labelValue string, value float64) error
	GetMetricsWithLabels(metricName string) (map[string]map[string]float64, error)
}

func formatChatID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Load restores counters saved by a previous run
func (m *BotMetrics) Load(store MetricStore) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	commandsProcessed, _ := store.GetMetric("commands_processed")
	messagesHandled, _ := store.GetMetric("messages_handled")

	m.CommandsProcessed.Add(commandsProcessed)
	m.MessagesHandled.Add(messagesHandled)

	loadLabeledMetrics(store, "channel_names", func(chatIDStr, chatName string, _ float64) {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			log.Warnf("Failed to parse chatID %s: %v", chatIDStr, err)
			return
		}
		m.ChannelNames.WithLabelValues(chatIDStr, chatName).Add(1)
		m.ChannelsSet[chatID] = chatName
	})
	m.ChannelsCount.Set(float64(len(m.ChannelsSet)))

	loadLabeledMetrics(store, "messages_per_channel", func(chatID, chatName string, value float64) {
		m.MessagesPerChannel.WithLabelValues(chatID, chatName).Add(value)
	})

	log.Debug("Metrics loaded from database.")
}

func loadLabeledMetrics(store MetricStore, metricName string, callback func(labelKey, labelValue string, value float64)) {
	metricsWithLabels, err := store.GetMetricsWithLabels(metricName)
	if err != nil {
		log.Errorf("Failed to load %s: %v", metricName, err)
		return
	}
	for labelKey, labelValues := range metricsWithLabels {
		for labelValue, value := range labelValues {
			callback(labelKey, labelValue, value)
		}
	}
}

// Save writes the current counters to store
func (m *BotMetrics) Save(store MetricStore) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	logSaveErr(store.SaveMetric("commands_processed", GetMetricValue(m.CommandsProcessed)))
	logSaveErr(store.SaveMetric("messages_handled", GetMetricValue(m.MessagesHandled)))
	logSaveErr(store.SaveMetric("channels_count", float64(len(m.ChannelsSet))))

	for chatID, chatName := range m.ChannelsSet {
		logSaveErr(store.SaveMetricWithLabels("channel_names", formatChatID(chatID), chatName, float64(chatID)))
	}

	metricChan := make(chan prometheus.Metric, 1)
	go func() {
		m.MessagesPerChannel.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("Failed to read MessagesPerChannel metric: %v", err)
			continue
		}
		var chatID, chatName string
		for _, label := range metricProto.Label {
			if label.GetName() == "chat_id" {
				chatID = label.GetValue()
			}
			if label.GetName() == "chat_name" {
				chatName = label.GetValue()
			}
		}
		logSaveErr(store.SaveMetricWithLabels("messages_per_channel", chatID, chatName, metricProto.Counter.GetValue()))
	}

	log.Debug("Metrics saved to database.")
}

func logSaveErr(err error) {
	if err != nil {
		log.Errorf("Failed to save metric: %v", err)
	}
}

// GetMetricValue reads the value of a single counter or gauge
func GetMetricValue(metric prometheus.Collector) float64 {
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		return metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		return metricProto.Gauge.GetValue()
	}
	return 0
}
