package models

import "github.com/rfielding/ctlcheck/kripke"

// TrafficLight cycles red -> green -> yellow -> red.
func TrafficLight() *kripke.Model {
	b := newBuilder()
	b.state("red", nil, "stop")
	b.state("green", nil, "go")
	b.state("yellow", nil, "caution")

	b.edge("red", "green")
	b.edge("green", "yellow")
	b.edge("yellow", "red")

	labels := kripke.Labels()
	m := kripke.NewModel("traffic-light", b.g)
	m.Description = "A three-phase traffic light."
	m.AddFormula(check("always-go-again", "The light always turns green again.", "AG AF go", labels))
	m.AddFormula(check("caution-before-stop", "Green is always followed by caution.", "AG(go -> AX caution)", labels))
	m.AddFormula(check("never-stuck", "Every state has a next state.", "AG EX true", labels))
	return m
}

// Mutex is the classic two-process mutual exclusion protocol. Each
// process is non-critical (n), trying (t) or critical (c).
func Mutex() *kripke.Model {
	b := newBuilder()
	b.state("n1n2", nil)
	b.state("t1n2", nil, "trying1")
	b.state("c1n2", nil, "critical1")
	b.state("n1t2", nil, "trying2")
	b.state("n1c2", nil, "critical2")
	b.state("t1t2", nil, "trying1", "trying2")
	b.state("c1t2", nil, "critical1", "trying2")
	b.state("t1c2", nil, "trying1", "critical2")

	b.edge("n1n2", "t1n2", "n1t2")
	b.edge("t1n2", "c1n2", "t1t2")
	b.edge("n1t2", "t1t2", "n1c2")
	b.edge("c1n2", "n1n2")
	b.edge("n1c2", "n1n2")
	b.edge("t1t2", "c1t2", "t1c2")
	b.edge("c1t2", "n1t2")
	b.edge("t1c2", "t1n2")

	labels := kripke.Labels()
	m := kripke.NewModel("mutex", b.g)
	m.Description = "Two processes sharing one critical section."
	m.AddFormula(check("safety", "Both processes are never critical at once.",
		"AG !(critical1 & critical2)", labels))
	m.AddFormula(check("liveness1", "Process 1 trying implies it eventually enters (fails: it can be starved).",
		"AG(trying1 -> AF critical1)", labels))
	m.AddFormula(check("non-blocking", "Process 1 can always try to enter.",
		"AG EF trying1", labels))
	m.AddFormula(check("starvation-possible", "Some path keeps process 1 trying forever.",
		"EF EG(trying1 & !critical1)", labels))
	return m
}
