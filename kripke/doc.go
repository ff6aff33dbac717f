// Package kripke evaluates Computation Tree Logic formulas over an
// explicit-state Kripke structure.
//
// A StateGraph is an arena of immutable States joined by successor
// edges. Formulas are trees of Atomic, Unary and Binary nodes, built
// with the constructors in this package or read with Parse. An Evaluator
// walks a formula bottom-up and returns the exact set of nodes that
// satisfy it, either over the whole graph or over the part reachable
// from a start node.
//
// Temporal operators are computed as fixpoints over pre-images:
//
//	EF φ    = μZ. φ ∨ EX Z          EG φ = νZ. φ ∧ EX Z
//	AF φ    = μZ. φ ∨ AX Z          AG φ = νZ. φ ∧ (all successors in Z)
//	E[φUψ]  = μZ. ψ ∨ (φ ∧ EX Z)    A[φUψ] = μZ. ψ ∨ (φ ∧ AX Z)
//
// Every loop stops when the accumulated set stops changing, which bounds
// it by the number of states even on cyclic graphs.
//
// Terminal states (no successors) never satisfy AX φ, so they are never
// added by AF or AU, and they drop out of EG. They do stay in AG φ when
// they satisfy φ, which keeps AG φ ≡ ¬EF¬φ on every graph. AF φ ≡ ¬EG¬φ
// holds on graphs without terminal states.
//
// Malformed input (a nil graph, a nil formula or operand, an operator
// tag in the wrong node kind) evaluates to the empty set. Diagnostics go
// to the logger passed with WithLogger and nowhere else.
package kripke
