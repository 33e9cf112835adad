package hub_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skylink-gcs/groundlink/hub"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := hub.NewMetrics()
	m.RecordMessageRecv(3)
	m.RecordCommandSent(1)
	m.RecordCommandSettled(1)
	m.RecordPollSent(2)
	m.RecordProtocolViolation(1)

	s := m.Snapshot()
	if s.MessagesRecv != 3 {
		t.Errorf("MessagesRecv = %d, want 3", s.MessagesRecv)
	}
	if s.CommandsSent != 1 || s.CommandsSettled != 1 {
		t.Errorf("commands = %d/%d, want 1/1", s.CommandsSent, s.CommandsSettled)
	}
	if s.PollsSent != 2 {
		t.Errorf("PollsSent = %d, want 2", s.PollsSent)
	}
	if s.ProtocolViolations != 1 {
		t.Errorf("ProtocolViolations = %d, want 1", s.ProtocolViolations)
	}
}

func TestMetrics_CollectorCarriesHubLabel(t *testing.T) {
	m := hub.NewMetrics()
	m.RecordMessageRecv(5)

	reg := prometheus.NewRegistry()
	if err := reg.Register(m.Collector("gcs-1")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Fatal("Gather() returned no families")
	}

	var recvValue float64
	labelSeen := false
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == "hub" && pair.GetValue() == "gcs-1" {
					labelSeen = true
				}
			}
			if family.GetName() == "groundlink_hub_messages_received_total" {
				recvValue = metric.GetCounter().GetValue()
			}
		}
	}
	if !labelSeen {
		t.Error("no series carries the hub label")
	}
	if recvValue != 5 {
		t.Errorf("messages_received_total = %v, want 5", recvValue)
	}
}
