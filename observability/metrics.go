package observability

import (
	"context"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MetricsObserver counts events by type and level in Prometheus.
type MetricsObserver struct {
	events *prom.CounterVec
}

// NewMetricsObserver registers the formstate event counter on reg. A nil reg
// creates a private registry.
func NewMetricsObserver(reg *prom.Registry) (*MetricsObserver, error) {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	events := prom.NewCounterVec(prom.CounterOpts{
		Namespace: "formstate",
		Name:      "events_total",
		Help:      "Value host manager events by type and level",
	}, []string{"type", "level"})

	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &MetricsObserver{events: events}, nil
}

func (m *MetricsObserver) OnEvent(_ context.Context, event Event) {
	m.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}

// Count returns the current counter value for an event type and level.
func (m *MetricsObserver) Count(eventType EventType, level Level) float64 {
	c, err := m.events.GetMetricWithLabelValues(string(eventType), level.String())
	if err != nil {
		return 0
	}
	return counterValue(c)
}

func counterValue(c prom.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
