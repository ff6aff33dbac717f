package models

import "github.com/rfielding/ctlcheck/kripke"

// Labyrinth is a three-room maze: the entrance s0 leads to a hall s1,
// and the hall and the exit s2 lead into each other.
//
//	s0 -> s1 -> s2 -> s1
//
// isGoal holds only at the exit and is defined on the room variable,
// not on a label.
func Labyrinth() *kripke.Model {
	b := newBuilder()
	b.state("s0", map[string]any{"room": 0}, "entrance")
	b.state("s1", map[string]any{"room": 1}, "hall")
	b.state("s2", map[string]any{"room": 2}, "exit")
	b.edge("s0", "s1")
	b.edge("s1", "s2")
	b.edge("s2", "s1")

	props := kripke.Props(map[string]kripke.Predicate{
		"isGoal": kripke.VarEquals("room", 2),
	}, kripke.Labels())

	m := kripke.NewModel("labyrinth", b.g)
	m.Description = "Three rooms; the exit and the hall lead into each other."
	m.AddFormula(check("goal-reachable", "Some path from the entrance reaches the exit.", "EF isGoal", props))
	m.AddFormula(check("goal-avoidable", "Every path avoids the exit forever (expected to fail).", "AG !isGoal", props))
	m.AddFormula(check("goal-inevitable", "Every path reaches the exit.", "AF isGoal", props))
	m.AddFormula(check("goal-recurs", "On every path the exit is visited again and again.", "AG AF isGoal", props))
	m.AddFormula(check("until-goal", "Some path reaches the exit, trivially guarded.", "E[true U isGoal]", props))
	return m
}
