package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "council"

// Collector records council metrics. It satisfies dispatch.Observer and
// synthesis.Observer.
type Collector struct {
	registry *prometheus.Registry

	agentCallsTotal   *prometheus.CounterVec
	agentCallDuration *prometheus.HistogramVec
	roundsTotal       *prometheus.CounterVec
	debateExchanges   prometheus.Histogram
	synthesisTotal    *prometheus.CounterVec
	synthesisDuration prometheus.Histogram
}

// NewCollector creates a Collector with a fresh registry that also carries
// the Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		agentCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_calls_total",
				Help:      "Total number of agent calls by outcome",
			},
			[]string{"agent", "status"},
		),
		agentCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "agent_call_duration_seconds",
				Help:      "Agent call latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"agent"},
		),
		roundsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rounds_total",
				Help:      "Total number of conversation rounds by mode",
			},
			[]string{"mode"},
		),
		debateExchanges: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "debate_exchanges",
				Help:      "Exchanges run per debate round",
				Buckets:   []float64{1, 2, 3, 4, 5, 8},
			},
		),
		synthesisTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synthesis_total",
				Help:      "Total number of synthesis attempts by outcome",
			},
			[]string{"outcome"},
		),
		synthesisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "synthesis_duration_seconds",
				Help:      "Synthesis latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// ObserveCall records one agent call.
func (c *Collector) ObserveCall(agent string, status core.Status, d time.Duration) {
	c.agentCallsTotal.WithLabelValues(agent, string(status)).Inc()
	c.agentCallDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// ObserveRound records one committed round.
func (c *Collector) ObserveRound(mode core.Mode) {
	c.roundsTotal.WithLabelValues(string(mode)).Inc()
}

// ObserveDebate records the number of exchanges a debate ran.
func (c *Collector) ObserveDebate(exchanges int) {
	c.debateExchanges.Observe(float64(exchanges))
}

// ObserveSynthesis records one synthesis attempt.
func (c *Collector) ObserveSynthesis(outcome string, d time.Duration) {
	c.synthesisTotal.WithLabelValues(outcome).Inc()
	c.synthesisDuration.Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
