package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of one process. Each instance owns its
// registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	// StatesPublished counts presenter state changes by kind (loading/content/error)
	StatesPublished *prometheus.CounterVec

	// VotesTotal counts vote requests by vote type and result
	VotesTotal *prometheus.CounterVec

	// RestaurantsAdded counts add-restaurant requests by result
	RestaurantsAdded *prometheus.CounterVec

	// ActiveSubscriptions tracks open document subscriptions
	ActiveSubscriptions prometheus.Gauge

	// StreamClients tracks connected SSE clients
	StreamClients prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		StatesPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_states_published_total",
				Help: "Presenter states published by kind",
			},
			[]string{"state"},
		),
		VotesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_votes_total",
				Help: "Vote requests by vote type and result",
			},
			[]string{"vote_type", "result"},
		),
		RestaurantsAdded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_restaurants_added_total",
				Help: "Add-restaurant requests by result",
			},
			[]string{"result"},
		),
		ActiveSubscriptions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "poll_active_subscriptions",
				Help: "Open poll document subscriptions",
			},
		),
		StreamClients: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "poll_stream_clients",
				Help: "Connected server-sent event clients",
			},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Result turns an error into the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
