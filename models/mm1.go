package models

import (
	"fmt"

	"github.com/rfielding/ctlcheck/kripke"
)

// mm1Capacity is the queue bound of the MM1 model.
const mm1Capacity = 10

// MM1 is the state space of an M/M/1 queue with room for ten customers.
// State qN holds N customers. An arrival moves qN to qN+1 and is dropped
// at capacity; a service moves qN to qN-1. The empty queue idles.
func MM1() *kripke.Model {
	b := newBuilder()
	for n := 0; n <= mm1Capacity; n++ {
		var props []string
		switch n {
		case 0:
			props = append(props, "empty")
		case mm1Capacity:
			props = append(props, "full")
		}
		b.state(queueState(n), map[string]any{"queued": n}, props...)
	}
	for n := 0; n <= mm1Capacity; n++ {
		switch n {
		case 0:
			b.edge(queueState(n), queueState(n+1), queueState(n))
		case mm1Capacity:
			b.edge(queueState(n), queueState(n-1), queueState(n))
		default:
			b.edge(queueState(n), queueState(n+1), queueState(n-1))
		}
	}

	props := kripke.Props(map[string]kripke.Predicate{
		"overflow": func(s kripke.State) bool {
			v, _ := s.Var("queued")
			n, ok := v.(int)
			return ok && n > mm1Capacity
		},
	}, kripke.Labels())

	m := kripke.NewModel("mm1", b.g)
	m.Description = "M/M/1 queue with capacity 10; queue length must never exceed 10."
	m.AddFormula(check("bounded", "The queue never holds more than ten customers.", "AG !overflow", props))
	m.AddFormula(check("can-fill", "Some run fills the queue.", "EF full", props))
	m.AddFormula(check("can-drain", "From every state the queue can empty again.", "AG EF empty", props))
	m.AddFormula(check("full-recovers", "A full queue can always serve a customer.", "AG(full -> EX !full)", props))
	m.AddFormula(check("fills-inevitably", "Every run fills the queue (fails: the empty queue may idle).", "AF full", props))
	return m
}

func queueState(n int) string {
	return fmt.Sprintf("q%d", n)
}
