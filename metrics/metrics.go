// Package metrics exports evaluator activity as Prometheus metrics.
//
// A Collector is a kripke.Observer: pass it to kripke.WithObserver and
// every formula node and fixpoint loop is counted, labelled by operator
// ("ATOM" for atomic propositions).
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rfielding/ctlcheck/kripke"
)

const namespace = "ctlcheck"

// Collector holds the evaluator metrics. All methods are safe for
// concurrent use.
type Collector struct {
	// FormulasEvaluated counts formula nodes whose sets were computed.
	FormulasEvaluated *prometheus.CounterVec
	// FixpointIterations counts every fixpoint iteration.
	FixpointIterations *prometheus.CounterVec
	// IterationsPerFixpoint observes how many iterations each loop took.
	IterationsPerFixpoint *prometheus.HistogramVec
	// LastSatisfying is the size of the most recent set per operator.
	LastSatisfying *prometheus.GaugeVec
}

var _ kripke.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		FormulasEvaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "formulas_evaluated_total",
				Help:      "Formula nodes evaluated, by operator.",
			},
			[]string{"op"},
		),
		FixpointIterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fixpoint_iterations_total",
				Help:      "Fixpoint iterations run, by operator.",
			},
			[]string{"op"},
		),
		IterationsPerFixpoint: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fixpoint_iterations",
				Help:      "Iterations needed for one fixpoint loop to converge.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"op"},
		),
		LastSatisfying: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_satisfying_states",
				Help:      "Size of the most recently computed satisfying set, by operator.",
			},
			[]string{"op"},
		),
	}
	if reg == nil {
		return c, nil
	}
	for _, m := range []prometheus.Collector{
		c.FormulasEvaluated, c.FixpointIterations, c.IterationsPerFixpoint, c.LastSatisfying,
	} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

func label(op kripke.Op) string {
	if op == 0 {
		return "ATOM"
	}
	return op.String()
}

func (c *Collector) Evaluated(f kripke.Formula, size int) {
	op := label(kripke.OpOf(f))
	c.FormulasEvaluated.WithLabelValues(op).Inc()
	c.LastSatisfying.WithLabelValues(op).Set(float64(size))
}

func (c *Collector) FixpointStep(op kripke.Op, _, _ int) {
	c.FixpointIterations.WithLabelValues(label(op)).Inc()
}

func (c *Collector) FixpointDone(op kripke.Op, iterations, _ int) {
	c.IterationsPerFixpoint.WithLabelValues(label(op)).Observe(float64(iterations))
}
