package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type slackMetrics struct {
	messages *prometheus.CounterVec
	commands *prometheus.CounterVec
}

var (
	slackMetricsOnce sync.Once
	slackRegistry    *slackMetrics
)

// Slack returns the metrics registry tracking chat traffic.
func Slack() *slackMetrics {
	slackMetricsOnce.Do(func() {
		slackRegistry = &slackMetrics{
			messages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "elf",
				Subsystem: "slack",
				Name:      "messages_total",
				Help:      "Count of posted announcements segmented by event kind and outcome.",
			}, []string{"event", "outcome"}),
			commands: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "elf",
				Subsystem: "slack",
				Name:      "commands_total",
				Help:      "Count of bot commands received segmented by command.",
			}, []string{"command"}),
		}
		prometheus.MustRegister(slackRegistry.messages, slackRegistry.commands)
	})
	return slackRegistry
}

// ObserveMessage counts one posting attempt for an event kind.
func (m *slackMetrics) ObserveMessage(event string, err error) {
	if m == nil {
		return
	}
	if event = strings.TrimSpace(event); event == "" {
		event = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.messages.WithLabelValues(event, outcome).Inc()
}

// RecordCommand counts one received bot command.
func (m *slackMetrics) RecordCommand(command string) {
	if m == nil {
		return
	}
	if command = strings.TrimSpace(command); command == "" {
		command = "unknown"
	}
	m.commands.WithLabelValues(command).Inc()
}
