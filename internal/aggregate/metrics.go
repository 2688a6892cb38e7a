package aggregate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments aggregation passes. A nil *Metrics records nothing.
type Metrics struct {
	passes            *prometheus.CounterVec
	passDuration      prometheus.Histogram
	triggers          prometheus.Counter
	coalesced         prometheus.Counter
	running           prometheus.Gauge
	observations      prometheus.Counter
	malformed         prometheus.Counter
	writeFailures     prometheus.Counter
	unnormalized      prometheus.Counter
	publishedAverages prometheus.Counter
}

// NewMetrics registers the aggregation metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hypoavg_passes_total",
			Help: "Aggregation passes run, by outcome",
		}, []string{"outcome"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hypoavg_pass_duration_seconds",
			Help:    "Wall time of one aggregation pass",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		triggers: factory.NewCounter(prometheus.CounterOpts{
			Name: "hypoavg_triggers_total",
			Help: "Recompute triggers received",
		}),
		coalesced: factory.NewCounter(prometheus.CounterOpts{
			Name: "hypoavg_triggers_coalesced_total",
			Help: "Triggers absorbed by an already pending rerun",
		}),
		running: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hypoavg_pass_running",
			Help: "1 while an aggregation pass is in flight",
		}),
		observations: factory.NewCounter(prometheus.CounterOpts{
			Name: "hypoavg_observations_folded_total",
			Help: "Raw observations folded into averages",
		}),
		malformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "hypoavg_observations_malformed_total",
			Help: "Raw observation files skipped as malformed",
		}),
		writeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "hypoavg_write_failures_total",
			Help: "Averages that could not be published",
		}),
		unnormalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "hypoavg_unnormalized_hypotheses_total",
			Help: "Hypotheses published without an evidence schema",
		}),
		publishedAverages: factory.NewCounter(prometheus.CounterOpts{
			Name: "hypoavg_averages_published_total",
			Help: "average.json documents written",
		}),
	}
}

func (m *Metrics) observePass(r *PassResult, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.passes.WithLabelValues(outcome).Inc()
	if r == nil {
		return
	}
	m.passDuration.Observe(r.Duration.Seconds())
	m.observations.Add(float64(r.Observations))
	m.malformed.Add(float64(r.Malformed))
	m.writeFailures.Add(float64(r.WriteFailures))
	m.unnormalized.Add(float64(len(r.Unnormalized)))
	m.publishedAverages.Add(float64(r.Published))
}

func (m *Metrics) observeTrigger(coalesced bool) {
	if m == nil {
		return
	}
	m.triggers.Inc()
	if coalesced {
		m.coalesced.Inc()
	}
}

func (m *Metrics) setRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.running.Set(1)
	} else {
		m.running.Set(0)
	}
}
