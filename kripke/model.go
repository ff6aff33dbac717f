package kripke

import (
	"fmt"
)

// Check is one named CTL property attached to a model.
type Check struct {
	Name        string
	Description string
	Formula     Formula
	// Start overrides the graph root as the state the verdict is about.
	Start *NodeID
}

// Result is the outcome of verifying one Check.
type Result struct {
	Check      Check
	Start      NodeID
	Satisfying StateSet
	Holds      bool
	Err        error
}

// Model bundles a state graph with the properties it is expected to meet.
type Model struct {
	Name        string
	Description string
	Graph       *StateGraph

	checks []Check
}

func NewModel(name string, g *StateGraph) *Model {
	return &Model{Name: name, Graph: g}
}

// AddFormula registers a property to be verified by Verify.
func (m *Model) AddFormula(c Check) {
	m.checks = append(m.checks, c)
}

// Formulas returns the registered properties in insertion order.
func (m *Model) Formulas() []Check {
	out := make([]Check, len(m.checks))
	copy(out, m.checks)
	return out
}

// Verify evaluates every registered property.
func (m *Model) Verify(e *Evaluator) []Result {
	out := make([]Result, 0, len(m.checks))
	for _, c := range m.checks {
		out = append(out, m.VerifyOne(e, c))
	}
	return out
}

// VerifyOne evaluates c over the part of the graph reachable from its
// start state. The verdict is whether the start state satisfies it.
func (m *Model) VerifyOne(e *Evaluator, c Check) Result {
	if e == nil {
		e = defaultEvaluator
	}
	res := Result{Check: c, Satisfying: NewStateSet()}

	if err := Validate(c.Formula); err != nil {
		res.Err = fmt.Errorf("check %q: %w", c.Name, err)
		return res
	}

	start, ok := m.start(c)
	if !ok {
		res.Err = fmt.Errorf("check %q: no start state: %w", c.Name, ErrNodeNotFound)
		return res
	}
	res.Start = start
	res.Satisfying = e.EvaluateFrom(m.Graph, c.Formula, start)
	res.Holds = res.Satisfying.Has(start)
	return res
}

func (m *Model) start(c Check) (NodeID, bool) {
	if c.Start != nil {
		if _, ok := m.Graph.Node(*c.Start); !ok {
			return 0, false
		}
		return *c.Start, true
	}
	return m.Graph.Root()
}
