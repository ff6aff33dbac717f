package kripke

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// State is the labeling data for one point of the modeled system.
// It is immutable: maps are copied in NewState and again on the way out.
type State struct {
	name  string
	props map[string]bool
	vars  map[string]any
}

// NewState builds a State with the given display name, variables and
// atomic proposition labels.
func NewState(name string, vars map[string]any, props ...string) State {
	s := State{
		name:  name,
		props: make(map[string]bool, len(props)),
		vars:  make(map[string]any, len(vars)),
	}
	for _, p := range props {
		s.props[p] = true
	}
	for k, v := range vars {
		s.vars[k] = v
	}
	return s
}

func (s State) Name() string {
	return s.name
}

func (s State) HasProp(prop string) bool {
	return s.props[prop]
}

// Props returns the proposition labels in sorted order.
func (s State) Props() []string {
	props := make([]string, 0, len(s.props))
	for p := range s.props {
		props = append(props, p)
	}
	sort.Strings(props)
	return props
}

func (s State) Var(name string) (any, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Vars returns a copy of the state's variables.
func (s State) Vars() map[string]any {
	out := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

func (s State) String() string {
	var parts []string
	for k, v := range s.vars {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)
	props := s.Props()
	switch {
	case len(parts) == 0 && len(props) == 0:
		return s.name
	case len(parts) == 0:
		return fmt.Sprintf("%s{%s}", s.name, strings.Join(props, ", "))
	}
	return fmt.Sprintf("%s{%s}[%s]", s.name, strings.Join(props, ", "), strings.Join(parts, ", "))
}

// ----- Predicates -----

// Predicate is an atomic proposition over a state's data.
type Predicate func(State) bool

// HasProp holds in states labeled with prop.
func HasProp(prop string) Predicate {
	return func(s State) bool { return s.HasProp(prop) }
}

// VarEquals holds in states whose variable name equals value.
// Numbers compare by value regardless of their Go type.
func VarEquals(name string, value any) Predicate {
	return func(s State) bool {
		v, ok := s.Var(name)
		if !ok {
			return false
		}
		if a, aok := toFloat(v); aok {
			if b, bok := toFloat(value); bok {
				return a == b
			}
		}
		return reflect.DeepEqual(v, value)
	}
}

func Always() Predicate { return func(State) bool { return true } }
func Never() Predicate  { return func(State) bool { return false } }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
