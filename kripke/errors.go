package kripke

import (
	"errors"
	"fmt"
)

var (
	// ErrNilGraph is returned when mutating a nil *StateGraph.
	ErrNilGraph = errors.New("nil state graph")

	// ErrNodeNotFound is returned when a transition or root references
	// an identifier that was never returned by AddState.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNilFormula marks a missing formula or sub-formula.
	ErrNilFormula = errors.New("nil formula")

	// ErrInvalidOperator marks an operator tag used in the wrong variant,
	// such as AND inside a Unary node.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrUnknownProp is returned by Parse when an identifier has no predicate.
	ErrUnknownProp = errors.New("unknown proposition")
)

// SyntaxError reports a parse failure at a byte offset of the input.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("ctl syntax error at %d: %s", e.Pos, e.Msg)
}
