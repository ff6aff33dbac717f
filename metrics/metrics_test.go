package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/ctlcheck/kripke"
)

// chain builds a -> b -> c -> c, each state labelled with its name.
func chain(t *testing.T) *kripke.StateGraph {
	t.Helper()
	g := kripke.NewStateGraph()
	a := g.AddState(kripke.NewState("a", nil, "a"))
	b := g.AddState(kripke.NewState("b", nil, "b"))
	c := g.AddState(kripke.NewState("c", nil, "c"))
	require.NoError(t, g.AddTransition(a, b))
	require.NoError(t, g.AddTransition(b, c))
	require.NoError(t, g.AddTransition(c, c))
	return g
}

func TestCollectorCountsEvaluation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	e := kripke.NewEvaluator(kripke.WithObserver(c))
	got := e.Evaluate(chain(t), kripke.EF(kripke.Prop("c")))
	require.Equal(t, 3, got.Len())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.FormulasEvaluated.WithLabelValues("ATOM")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FormulasEvaluated.WithLabelValues("EF")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LastSatisfying.WithLabelValues("ATOM")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.LastSatisfying.WithLabelValues("EF")))

	// {c} grows to {b,c}, then {a,b,c}, then a final pass adds nothing.
	assert.Equal(t, 3.0, testutil.ToFloat64(c.FixpointIterations.WithLabelValues("EF")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.IterationsPerFixpoint))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestCollectorGreatestFixpoint(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)

	e := kripke.NewEvaluator(kripke.WithObserver(c))
	got := e.Evaluate(chain(t), kripke.EG(kripke.Or(kripke.Prop("b"), kripke.Prop("c"))))
	assert.Equal(t, kripke.NewStateSet(1, 2), got)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.FormulasEvaluated.WithLabelValues("OR")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.FormulasEvaluated.WithLabelValues("ATOM")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.LastSatisfying.WithLabelValues("EG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FixpointIterations.WithLabelValues("EG")))
}

func TestNewCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.ErrorContains(t, err, "register metrics")
}
