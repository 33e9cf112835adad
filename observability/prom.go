package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver counts events by source, type, and severity. It carries
// no per-event payload; pair it with a SlogObserver via Multi when the event
// data matters.
type PrometheusObserver struct {
	events *prometheus.CounterVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// counter with reg. Registration failures panic, matching the registry's
// MustRegister contract; construct once per process.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groundlink_observability_events_total",
			Help: "Observability events by source, type, and severity.",
		},
		[]string{"source", "type", "severity"},
	)
	reg.MustRegister(events)
	return &PrometheusObserver{events: events}
}

func (o *PrometheusObserver) OnEvent(ctx context.Context, event Event) {
	o.events.WithLabelValues(event.Source, string(event.Type), event.Level.String()).Inc()
}
