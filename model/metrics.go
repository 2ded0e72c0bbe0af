package model

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics observes the request lifecycle across every class that shares it.
type Metrics struct {
	requestsTotal *prometheus.CounterVec
	inFlight      *prometheus.GaugeVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "restmodel",
				Name:      "requests_total",
				Help:      "Resource requests settled, by type, kind, and outcome.",
			},
			[]string{"type", "kind", "outcome"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "restmodel",
				Name:      "requests_in_flight",
				Help:      "Resource requests currently in flight, by type and kind.",
			},
			[]string{"type", "kind"},
		),
	}

	if registerer != nil {
		if err := registerer.Register(metrics.requestsTotal); err != nil {
			return nil, err
		}
		if err := registerer.Register(metrics.inFlight); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}

// begin marks one request in flight and returns the settle callback.
func (m *Metrics) begin(typeKey string, kind requestKind) func(err error) {
	if m == nil {
		return func(error) {}
	}

	m.inFlight.WithLabelValues(typeKey, string(kind)).Inc()
	return func(err error) {
		m.inFlight.WithLabelValues(typeKey, string(kind)).Dec()
		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeError
		}
		m.requestsTotal.WithLabelValues(typeKey, string(kind), outcome).Inc()
	}
}
