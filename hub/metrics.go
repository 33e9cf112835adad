package hub

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSnapshot is a point-in-time copy of the hub's counters.
type MetricsSnapshot struct {
	MessagesRecv            int64
	NotificationsDispatched int64
	NotificationsDropped    int64
	HandlerPanics           int64
	CommandsSent            int64
	CommandsSettled         int64
	PollsSent               int64
	ReceiptsResolved        int64
	ProtocolViolations      int64
}

// Metrics tracks hub activity with atomic counters.
type Metrics struct {
	messagesRecv            atomic.Int64
	notificationsDispatched atomic.Int64
	notificationsDropped    atomic.Int64
	handlerPanics           atomic.Int64
	commandsSent            atomic.Int64
	commandsSettled         atomic.Int64
	pollsSent               atomic.Int64
	receiptsResolved        atomic.Int64
	protocolViolations      atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordMessageRecv(delta int)            { m.messagesRecv.Add(int64(delta)) }
func (m *Metrics) RecordNotificationDispatched(delta int) { m.notificationsDispatched.Add(int64(delta)) }
func (m *Metrics) RecordNotificationDropped(delta int)    { m.notificationsDropped.Add(int64(delta)) }
func (m *Metrics) RecordHandlerPanic(delta int)           { m.handlerPanics.Add(int64(delta)) }
func (m *Metrics) RecordCommandSent(delta int)            { m.commandsSent.Add(int64(delta)) }
func (m *Metrics) RecordCommandSettled(delta int)         { m.commandsSettled.Add(int64(delta)) }
func (m *Metrics) RecordPollSent(delta int)               { m.pollsSent.Add(int64(delta)) }
func (m *Metrics) RecordReceiptResolved(delta int)        { m.receiptsResolved.Add(int64(delta)) }
func (m *Metrics) RecordProtocolViolation(delta int)      { m.protocolViolations.Add(int64(delta)) }

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		MessagesRecv:            m.messagesRecv.Load(),
		NotificationsDispatched: m.notificationsDispatched.Load(),
		NotificationsDropped:    m.notificationsDropped.Load(),
		HandlerPanics:           m.handlerPanics.Load(),
		CommandsSent:            m.commandsSent.Load(),
		CommandsSettled:         m.commandsSettled.Load(),
		PollsSent:               m.pollsSent.Load(),
		ReceiptsResolved:        m.receiptsResolved.Load(),
		ProtocolViolations:      m.protocolViolations.Load(),
	}
}

// Collector exposes the counters to a prometheus registry. The hub label
// distinguishes instances when a process runs more than one.
func (m *Metrics) Collector(hub string) prometheus.Collector {
	return &metricsCollector{metrics: m, hub: hub}
}

type metricsCollector struct {
	metrics *Metrics
	hub     string
}

var (
	descMessagesRecv = prometheus.NewDesc(
		"groundlink_hub_messages_received_total",
		"Inbound messages seen by the hub's arrival listener.",
		[]string{"hub"}, nil)
	descNotificationsDispatched = prometheus.NewDesc(
		"groundlink_hub_notifications_dispatched_total",
		"Notifications delivered to a registered handler.",
		[]string{"hub"}, nil)
	descNotificationsDropped = prometheus.NewDesc(
		"groundlink_hub_notifications_dropped_total",
		"Notifications with no registered handler.",
		[]string{"hub"}, nil)
	descHandlerPanics = prometheus.NewDesc(
		"groundlink_hub_handler_panics_total",
		"Notification handlers that panicked during dispatch.",
		[]string{"hub"}, nil)
	descCommandsSent = prometheus.NewDesc(
		"groundlink_hub_commands_sent_total",
		"Commands transmitted to the swarm server.",
		[]string{"hub"}, nil)
	descCommandsSettled = prometheus.NewDesc(
		"groundlink_hub_commands_settled_total",
		"Commands whose every target reached a terminal outcome.",
		[]string{"hub"}, nil)
	descPollsSent = prometheus.NewDesc(
		"groundlink_hub_receipt_polls_total",
		"Receipt poll queries sent.",
		[]string{"hub"}, nil)
	descReceiptsResolved = prometheus.NewDesc(
		"groundlink_hub_receipts_resolved_total",
		"Receipt tokens resolved to a terminal outcome.",
		[]string{"hub"}, nil)
	descProtocolViolations = prometheus.NewDesc(
		"groundlink_hub_protocol_violations_total",
		"Server responses violating the outcome contract.",
		[]string{"hub"}, nil)
)

func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descMessagesRecv
	ch <- descNotificationsDispatched
	ch <- descNotificationsDropped
	ch <- descHandlerPanics
	ch <- descCommandsSent
	ch <- descCommandsSettled
	ch <- descPollsSent
	ch <- descReceiptsResolved
	ch <- descProtocolViolations
}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()
	counter := func(desc *prometheus.Desc, v int64) prometheus.Metric {
		return prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), c.hub)
	}
	ch <- counter(descMessagesRecv, s.MessagesRecv)
	ch <- counter(descNotificationsDispatched, s.NotificationsDispatched)
	ch <- counter(descNotificationsDropped, s.NotificationsDropped)
	ch <- counter(descHandlerPanics, s.HandlerPanics)
	ch <- counter(descCommandsSent, s.CommandsSent)
	ch <- counter(descCommandsSettled, s.CommandsSettled)
	ch <- counter(descPollsSent, s.PollsSent)
	ch <- counter(descReceiptsResolved, s.ReceiptsResolved)
	ch <- counter(descProtocolViolations, s.ProtocolViolations)
}
