package kripke

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labyrinth is the graph s0 -> s1 -> s2 -> s1 with the goal at s2.
func labyrinth(t *testing.T) (*StateGraph, map[string]NodeID, Formula) {
	t.Helper()
	g, ids := buildGraph(t,
		[]string{"s0", "s1", "s2"},
		[][2]string{{"s0", "s1"}, {"s1", "s2"}, {"s2", "s1"}},
	)
	isGoal := Atom("isGoal", func(s State) bool { return s.Name() == "s2" })
	return g, ids, isGoal
}

func TestScenarioA(t *testing.T) {
	g, ids, isGoal := labyrinth(t)

	ef := EvaluateFrom(g, EF(isGoal), ids["s0"])
	assert.True(t, ef.Equals(set(ids, "s0", "s1", "s2")), "EF isGoal = %v", ef)

	ag := EvaluateFrom(g, AG(Not(isGoal)), ids["s0"])
	assert.Equal(t, 0, ag.Len(), "AG ¬isGoal = %v", ag)
}

func TestScenarioB(t *testing.T) {
	g, ids := buildGraph(t, []string{"s"}, [][2]string{{"s", "s"}})

	assert.True(t, Evaluate(g, EX(True())).Equals(set(ids, "s")))
	assert.True(t, Evaluate(g, AX(True())).Equals(set(ids, "s")))
}

func TestScenarioD(t *testing.T) {
	g, ids, isGoal := labyrinth(t)

	eu := EvaluateFrom(g, EU(True(), isGoal), ids["s0"])
	assert.True(t, eu.Equals(set(ids, "s0", "s1", "s2")))
}

func TestOperators(t *testing.T) {
	// a -> b -> c -> c, a -> d (d is terminal), e isolated with self-loop.
	g, ids := buildGraph(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "c"}, {"a", "d"}, {"e", "e"}},
	)
	p := func(names ...string) Formula {
		in := make(map[string]bool)
		for _, n := range names {
			in[n] = true
		}
		return Atom(fmt.Sprint(names), func(s State) bool { return in[s.Name()] })
	}

	tests := []struct {
		name string
		f    Formula
		want []string
	}{
		{"atom", p("a", "c"), []string{"a", "c"}},
		{"not", Not(p("a", "c")), []string{"b", "d", "e"}},
		{"and", And(p("a", "b"), p("b", "c")), []string{"b"}},
		{"or", Or(p("a"), p("a", "e")), []string{"a", "e"}},
		{"EX", EX(p("c")), []string{"b", "c"}},
		{"AX", AX(p("b", "d")), []string{"a"}},
		{"AX terminal", AX(True()), []string{"a", "b", "c", "e"}},
		{"EF", EF(p("c")), []string{"a", "b", "c"}},
		{"EF terminal", EF(p("d")), []string{"a", "d"}},
		{"AF", AF(p("c")), []string{"b", "c"}},
		{"AF both branches", AF(p("c", "d")), []string{"a", "b", "c", "d"}},
		{"EG", EG(p("a", "b", "c")), []string{"a", "b", "c"}},
		{"EG terminal", EG(p("a", "d")), nil},
		{"AG", AG(p("b", "c")), []string{"b", "c"}},
		{"AG branches", AG(p("a", "b", "c")), []string{"b", "c"}},
		{"AG terminal", AG(p("d")), []string{"d"}},
		{"EU", EU(p("a", "b"), p("c")), []string{"a", "b", "c"}},
		{"EU blocked", EU(p("a"), p("c")), []string{"c"}},
		{"AU", AU(p("a", "b"), p("c")), []string{"b", "c"}},
		{"AU both", AU(p("a", "b"), p("c", "d")), []string{"a", "b", "c", "d"}},
		{"implies", Implies(p("a"), EX(p("d"))), []string{"a", "b", "c", "d", "e"}},
		{"false", False(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(g, tt.f)
			want := set(ids, tt.want...)
			assert.True(t, got.Equals(want), "%s: got %v want %v", tt.f, got, want)
		})
	}
}

func TestEvaluateFromRestrictsScope(t *testing.T) {
	// x -> s0 -> s1, and y is unreachable from s0.
	g, ids := buildGraph(t,
		[]string{"x", "s0", "s1", "y"},
		[][2]string{{"x", "s0"}, {"s0", "s1"}, {"s1", "s1"}, {"y", "y"}},
	)

	all := EvaluateFrom(g, True(), ids["s0"])
	assert.True(t, all.Equals(set(ids, "s0", "s1")))

	not := EvaluateFrom(g, Not(Prop("s1")), ids["s0"])
	assert.True(t, not.Equals(set(ids, "s0")))

	ex := EvaluateFrom(g, EX(Prop("s0")), ids["s0"])
	assert.Equal(t, 0, ex.Len(), "x is outside the scope")

	ex = Evaluate(g, EX(Prop("s0")))
	assert.True(t, ex.Equals(set(ids, "x")))

	assert.Equal(t, 0, EvaluateFrom(g, True(), 99).Len())
}

func TestHolds(t *testing.T) {
	g, ids, isGoal := labyrinth(t)

	assert.True(t, Holds(g, EF(isGoal), ids["s0"]))
	assert.False(t, Holds(g, isGoal, ids["s0"]))
	assert.True(t, Holds(g, AG(AF(isGoal)), ids["s0"]))
	assert.False(t, Holds(g, EF(isGoal), 99))
}

// EG(true) keeps every node on a cycle and every node with a path into
// one; it drops the rest.
func TestEGTrueTerminatesOnCycles(t *testing.T) {
	g, ids := buildGraph(t,
		[]string{"in", "c1", "c2", "c3", "out", "dead"},
		[][2]string{
			{"in", "c1"}, {"c1", "c2"}, {"c2", "c3"}, {"c3", "c1"},
			{"c2", "out"}, {"out", "dead"},
		},
	)

	got := Evaluate(g, EG(True()))
	assert.True(t, got.Equals(set(ids, "in", "c1", "c2", "c3")), "got %v", got)
}

func TestDoubleNegation(t *testing.T) {
	g, ids, isGoal := labyrinth(t)
	g.AddState(NewState("lonely", nil))

	for _, f := range []Formula{isGoal, EX(isGoal), AG(isGoal), Not(isGoal)} {
		assert.True(t, Evaluate(g, Not(Not(f))).Equals(Evaluate(g, f)), "%s", f)
		assert.True(t, EvaluateFrom(g, Not(Not(f)), ids["s0"]).Equals(EvaluateFrom(g, f, ids["s0"])), "%s", f)
	}
}

// randomGraph builds n states with random labels p/q and up to three
// successors each. When total is set every state gets at least one
// successor.
func randomGraph(r *rand.Rand, n int, total bool) *StateGraph {
	g := NewStateGraph()
	for i := 0; i < n; i++ {
		var props []string
		if r.Intn(2) == 0 {
			props = append(props, "p")
		}
		if r.Intn(3) == 0 {
			props = append(props, "q")
		}
		g.AddState(NewState(fmt.Sprintf("s%d", i), nil, props...))
	}
	for i := 0; i < n; i++ {
		k := r.Intn(4)
		if total && k == 0 {
			k = 1
		}
		for j := 0; j < k; j++ {
			_ = g.AddTransition(NodeID(i), NodeID(r.Intn(n)))
		}
	}
	return g
}

func TestDualityAG(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	p := Prop("p")
	for i := 0; i < 50; i++ {
		g := randomGraph(r, 2+r.Intn(12), false)

		assert.True(t,
			Evaluate(g, AG(p)).Equals(Evaluate(g, Not(EF(Not(p))))),
			"AG p != ¬EF¬p on graph %d", i)

		assert.True(t,
			EvaluateFrom(g, AG(p), 0).Equals(EvaluateFrom(g, Not(EF(Not(p))), 0)),
			"AG p != ¬EF¬p from root on graph %d", i)
	}
}

func TestDualityAF(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	p := Prop("p")
	for i := 0; i < 50; i++ {
		g := randomGraph(r, 2+r.Intn(12), true)

		assert.True(t,
			Evaluate(g, AF(p)).Equals(Evaluate(g, Not(EG(Not(p))))),
			"AF p != ¬EG¬p on graph %d", i)

		assert.True(t,
			EvaluateFrom(g, AF(p), 0).Equals(EvaluateFrom(g, Not(EG(Not(p))), 0)),
			"AF p != ¬EG¬p from root on graph %d", i)
	}
}

// A terminal ¬p state satisfies ¬EG¬p (it has no infinite ¬p path) but
// not AF p (it never reaches p). This is where the two forms part ways.
func TestDualityAFAtTerminalState(t *testing.T) {
	g, ids := buildGraph(t, []string{"dead"}, nil)
	p := Prop("p")

	assert.Equal(t, 0, Evaluate(g, AF(p)).Len())
	assert.True(t, Evaluate(g, Not(EG(Not(p)))).Equals(set(ids, "dead")))
}

func TestFixpointMonotonicity(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	p, q := Prop("p"), Prop("q")

	type trace struct {
		op    Op
		sizes []int
	}
	for i := 0; i < 30; i++ {
		g := randomGraph(r, 3+r.Intn(15), false)

		for _, f := range []Formula{EF(q), AF(q), EG(p), AG(p), EU(p, q), AU(p, q)} {
			var runs []*trace
			var cur *trace
			obs := ObserverFuncs{
				OnFixpointStep: func(op Op, iteration, size int) {
					if iteration == 1 {
						cur = &trace{op: op}
						runs = append(runs, cur)
					}
					cur.sizes = append(cur.sizes, size)
				},
			}
			e := NewEvaluator(WithObserver(obs))
			e.Evaluate(g, f)

			require.Len(t, runs, 1, "%s", f)
			run := runs[0]
			assert.LessOrEqual(t, len(run.sizes), g.Len()+1, "%s iterations", f)
			for k := 1; k < len(run.sizes); k++ {
				switch run.op {
				case OpEF, OpAF, OpEU, OpAU:
					assert.GreaterOrEqual(t, run.sizes[k], run.sizes[k-1], "%s shrank", f)
				case OpEG, OpAG:
					assert.LessOrEqual(t, run.sizes[k], run.sizes[k-1], "%s grew", f)
				}
			}
		}
	}
}

func TestObserverSeesEveryNode(t *testing.T) {
	g, ids, isGoal := labyrinth(t)

	var seen []string
	var done []Op
	e := NewEvaluator(WithObserver(ObserverFuncs{
		OnEvaluated:    func(f Formula, size int) { seen = append(seen, f.String()) },
		OnFixpointDone: func(op Op, iterations, size int) { done = append(done, op) },
	}))
	e.EvaluateFrom(g, AG(EF(isGoal)), ids["s0"])

	assert.Equal(t, []string{"isGoal", "EF isGoal", "AG EF isGoal"}, seen)
	assert.Equal(t, []Op{OpEF, OpAG}, done)
}

func TestMalformedInputYieldsEmptySet(t *testing.T) {
	g, ids, isGoal := labyrinth(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewEvaluator(WithLogger(logger))

	var nilUnary *Unary
	cases := []Formula{
		nil,
		nilUnary,
		EF(nil),
		And(isGoal, nil),
		EU(nil, isGoal),
		&Unary{Op: OpAnd, Sub: isGoal},
		&Binary{Op: OpEG, Left: isGoal, Right: isGoal},
		Atom("nopred", nil),
	}
	for _, f := range cases {
		assert.Equal(t, 0, e.Evaluate(g, f).Len(), "%v", f)
		assert.Equal(t, 0, e.EvaluateFrom(g, f, ids["s0"]).Len(), "%v", f)
	}
	assert.Equal(t, 0, e.Evaluate(nil, isGoal).Len())
	assert.Equal(t, 0, e.EvaluateFrom(nil, isGoal, 0).Len())
	assert.Contains(t, buf.String(), "ctl: nil formula")

	// An empty operand propagates as an ordinary empty set.
	assert.True(t, e.Evaluate(g, Not(EF(nil))).Equals(g.AllNodes()))
}

func TestEvaluationDoesNotMutate(t *testing.T) {
	g, _, isGoal := labyrinth(t)
	before := fmt.Sprint(g.Successors(0), g.Successors(1), g.Successors(2), g.EdgeCount())

	f := AU(Not(isGoal), AG(EF(isGoal)))
	first := Evaluate(g, f)
	second := Evaluate(g, f)

	assert.True(t, first.Equals(second))
	assert.Equal(t, before, fmt.Sprint(g.Successors(0), g.Successors(1), g.Successors(2), g.EdgeCount()))
}

func TestConcurrentEvaluation(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	g := randomGraph(r, 40, false)
	p, q := Prop("p"), Prop("q")
	formulas := []Formula{EF(q), AF(q), EG(p), AG(p), EU(p, q), AU(p, q), Not(EX(p))}

	want := make([]StateSet, len(formulas))
	for i, f := range formulas {
		want[i] = Evaluate(g, f)
	}

	e := NewEvaluator()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, f := range formulas {
				assert.True(t, e.Evaluate(g, f).Equals(want[i]), "%s", f)
			}
		}()
	}
	wg.Wait()
}
