package kripke

import (
	"log/slog"
)

// Evaluator computes satisfying-state sets for CTL formulas.
//
// It keeps no state between calls. One Evaluator may serve concurrent
// evaluations as long as the graphs it reads are no longer being built.
type Evaluator struct {
	logger   *slog.Logger
	observer Observer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the sink for diagnostics about malformed input.
// By default nothing is written anywhere.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver reports every evaluated node and fixpoint iteration to o.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		e.observer = o
	}
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = NewEvaluator()

// Evaluate returns the states of g satisfying f.
func Evaluate(g *StateGraph, f Formula) StateSet {
	return defaultEvaluator.Evaluate(g, f)
}

// EvaluateFrom returns the states reachable from start that satisfy f.
func EvaluateFrom(g *StateGraph, f Formula, start NodeID) StateSet {
	return defaultEvaluator.EvaluateFrom(g, f, start)
}

// Holds reports whether start satisfies f.
func Holds(g *StateGraph, f Formula, start NodeID) bool {
	return defaultEvaluator.Holds(g, f, start)
}

// Evaluate returns the states of g satisfying f, over every node of g.
func (e *Evaluator) Evaluate(g *StateGraph, f Formula) StateSet {
	if g == nil {
		e.logger.Debug("ctl: nil graph, returning empty result")
		return NewStateSet()
	}
	return e.eval(g, f, scope{all: g.AllNodes()})
}

// EvaluateFrom restricts the world to the nodes reachable from start and
// returns the satisfying states within it. An unknown start yields the
// empty set.
func (e *Evaluator) EvaluateFrom(g *StateGraph, f Formula, start NodeID) StateSet {
	if g == nil {
		e.logger.Debug("ctl: nil graph, returning empty result")
		return NewStateSet()
	}
	if _, ok := g.Node(start); !ok {
		e.logger.Debug("ctl: start node not found, returning empty result", slog.Int("start", int(start)))
		return NewStateSet()
	}
	return e.eval(g, f, scope{all: g.Reachable(start), start: start, bounded: true})
}

// Holds reports whether start satisfies f, evaluating only the part of
// g reachable from start.
func (e *Evaluator) Holds(g *StateGraph, f Formula, start NodeID) bool {
	return e.EvaluateFrom(g, f, start).Has(start)
}

// scope is the world a single evaluation ranges over: every node, or the
// nodes reachable from start. It is closed under successors, so pre-images
// computed inside it never need nodes from outside.
type scope struct {
	all     StateSet
	start   NodeID
	bounded bool
}

func (e *Evaluator) eval(g *StateGraph, f Formula, sc scope) StateSet {
	if isNil(f) {
		e.logger.Debug("ctl: nil formula, returning empty result")
		return NewStateSet()
	}

	var out StateSet
	switch v := f.(type) {
	case *Atomic:
		out = e.evalAtomic(g, v, sc)
	case *Unary:
		out = e.evalUnary(g, v, sc)
	case *Binary:
		out = e.evalBinary(g, v, sc)
	default:
		e.logger.Debug("ctl: unsupported formula type", slog.String("formula", f.String()))
		out = NewStateSet()
	}

	if e.observer != nil {
		e.observer.Evaluated(f, out.Len())
	}
	return out
}

func (e *Evaluator) evalAtomic(g *StateGraph, a *Atomic, sc scope) StateSet {
	out := NewStateSet()
	if a.Pred == nil {
		e.logger.Debug("ctl: atom without predicate", slog.String("atom", a.Name))
		return out
	}
	test := func(n *StateNode) {
		if a.Pred(n.State) {
			out.Add(n.ID)
		}
	}
	if sc.bounded {
		g.walk(sc.start, test)
		return out
	}
	for _, n := range g.nodes {
		test(n)
	}
	return out
}

func (e *Evaluator) evalUnary(g *StateGraph, u *Unary, sc scope) StateSet {
	if !u.Op.IsUnary() {
		e.logger.Debug("ctl: invalid unary operator", slog.String("op", u.Op.String()))
		return NewStateSet()
	}
	if isNil(u.Sub) {
		e.logger.Debug("ctl: unary formula without operand", slog.String("op", u.Op.String()))
		return NewStateSet()
	}

	sub := e.eval(g, u.Sub, sc)

	switch u.Op {
	case OpNot:
		return sc.all.Difference(sub)

	case OpEX:
		return g.PreImageExistential(sub, sc.all)

	case OpAX:
		return g.PreImageUniversal(sub, sc.all)

	case OpEF:
		// EF φ = μZ. φ ∨ EX Z
		return e.grow(OpEF, sub, func(z StateSet) StateSet {
			return g.PreImageExistential(z, sc.all)
		})

	case OpAF:
		// AF φ = μZ. φ ∨ AX Z
		return e.grow(OpAF, sub, func(z StateSet) StateSet {
			return g.PreImageUniversal(z, sc.all)
		})

	case OpEG:
		// EG φ = νZ. φ ∧ EX Z
		return e.shrink(OpEG, sub, func(z StateSet) StateSet {
			return g.PreImageExistential(z, z)
		})

	case OpAG:
		// AG φ = νZ. φ ∧ ∀s'. R(s,s') → s' ∈ Z
		// A terminal φ-state has no path leaving φ, so it stays.
		return e.shrink(OpAG, sub, func(z StateSet) StateSet {
			keep := NewStateSet()
			for _, n := range g.scopeNodes(z) {
				if allIn(n.succ, z) {
					keep.Add(n.ID)
				}
			}
			return keep
		})
	}
	return NewStateSet()
}

func (e *Evaluator) evalBinary(g *StateGraph, b *Binary, sc scope) StateSet {
	if !b.Op.IsBinary() {
		e.logger.Debug("ctl: invalid binary operator", slog.String("op", b.Op.String()))
		return NewStateSet()
	}
	if isNil(b.Left) || isNil(b.Right) {
		e.logger.Debug("ctl: binary formula missing an operand", slog.String("op", b.Op.String()))
		return NewStateSet()
	}

	left := e.eval(g, b.Left, sc)
	right := e.eval(g, b.Right, sc)

	switch b.Op {
	case OpAnd:
		return left.Intersect(right)

	case OpOr:
		return left.Union(right)

	case OpEU:
		// E[φ U ψ] = μZ. ψ ∨ (φ ∧ EX Z)
		return e.grow(OpEU, right, func(z StateSet) StateSet {
			return g.PreImageExistential(z, left)
		})

	case OpAU:
		// A[φ U ψ] = μZ. ψ ∨ (φ ∧ AX Z)
		return e.grow(OpAU, right, func(z StateSet) StateSet {
			return g.PreImageUniversal(z, left)
		})
	}
	return NewStateSet()
}

// grow computes a least fixpoint: starting from seed it keeps adding
// step(Z) until an iteration adds nothing. The accumulator only grows,
// so the loop runs at most |states|+1 times even on cyclic graphs.
func (e *Evaluator) grow(op Op, seed StateSet, step func(StateSet) StateSet) StateSet {
	z := seed.Copy()
	iter := 0
	for {
		iter++
		added := false
		for id := range step(z) {
			if !z.Has(id) {
				z.Add(id)
				added = true
			}
		}
		if e.observer != nil {
			e.observer.FixpointStep(op, iter, z.Len())
		}
		if !added {
			break
		}
	}
	if e.observer != nil {
		e.observer.FixpointDone(op, iter, z.Len())
	}
	return z
}

// shrink computes a greatest fixpoint: starting from seed it keeps only
// the members of keep(Z) until an iteration removes nothing.
func (e *Evaluator) shrink(op Op, seed StateSet, keep func(StateSet) StateSet) StateSet {
	z := seed.Copy()
	iter := 0
	for {
		iter++
		next := z.Intersect(keep(z))
		if e.observer != nil {
			e.observer.FixpointStep(op, iter, next.Len())
		}
		if next.Len() == z.Len() {
			break
		}
		z = next
	}
	if e.observer != nil {
		e.observer.FixpointDone(op, iter, z.Len())
	}
	return z
}
