// Package models holds small hand-built Kripke models used by the CLI,
// the report tests and the documentation.
package models

import (
	"sort"

	"github.com/rfielding/ctlcheck/kripke"
)

// All maps a model name to its constructor.
func All() map[string]func() *kripke.Model {
	return map[string]func() *kripke.Model{
		"labyrinth":     Labyrinth,
		"mm1":           MM1,
		"order":         Order,
		"purple":        Purple,
		"traffic-light": TrafficLight,
		"mutex":         Mutex,
	}
}

// Names lists the built-in models in sorted order.
func Names() []string {
	var names []string
	for name := range All() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builder keeps name -> id bookkeeping while a model is assembled.
// Edges naming unknown states panic: the models here are fixed data.
type builder struct {
	g   *kripke.StateGraph
	ids map[string]kripke.NodeID
}

func newBuilder() *builder {
	return &builder{g: kripke.NewStateGraph(), ids: make(map[string]kripke.NodeID)}
}

func (b *builder) state(name string, vars map[string]any, props ...string) kripke.NodeID {
	id := b.g.AddState(kripke.NewState(name, vars, props...))
	b.ids[name] = id
	return id
}

func (b *builder) edge(from string, to ...string) {
	for _, t := range to {
		if err := b.g.AddTransition(b.ids[from], b.ids[t]); err != nil {
			panic(err)
		}
	}
}

func check(name, desc, formula string, resolve kripke.PropResolver) kripke.Check {
	return kripke.Check{
		Name:        name,
		Description: desc,
		Formula:     kripke.MustParse(formula, resolve),
	}
}

// Expressions returns JavaScript equivalents of the propositions a model
// defines on variables rather than labels, so the model can be exported
// to a model file without changing any verdict.
func Expressions(model string) map[string]string {
	switch model {
	case "labyrinth":
		return map[string]string{"isGoal": "room == 2"}
	case "mm1":
		return map[string]string{"overflow": "queued > 10"}
	}
	return nil
}
