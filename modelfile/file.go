// Package modelfile reads and writes Kripke models as YAML documents.
//
// A model file lists states (with labels and variables), transitions,
// named propositions written as JavaScript expressions, and the CTL
// checks to run:
//
//	name: labyrinth
//	root: s0
//	states:
//	  - name: s0
//	    props: [entrance]
//	    vars: {room: 0}
//	transitions:
//	  - {from: s0, to: s1}
//	  - {from: s1, to: [s0, s2]}
//	props:
//	  isGoal: "room == 2"
//	checks:
//	  - name: goal-reachable
//	    formula: "EF isGoal"
//	    expect: true
//
// Identifiers in formulas resolve to a JavaScript proposition when one
// of that name exists and otherwise to a label carried by some state.
// Labels that are not plain identifiers are written quoted, as in
// EF "is-goal".
package modelfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFile wraps every structural problem found by Validate.
var ErrInvalidFile = errors.New("invalid model file")

// File is the YAML document.
type File struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Root        string            `yaml:"root,omitempty"`
	States      []StateSpec       `yaml:"states"`
	Transitions []TransitionSpec  `yaml:"transitions,omitempty"`
	Props       map[string]string `yaml:"props,omitempty"`
	Checks      []CheckSpec       `yaml:"checks,omitempty"`
}

type StateSpec struct {
	Name  string         `yaml:"name"`
	Props []string       `yaml:"props,omitempty,flow"`
	Vars  map[string]any `yaml:"vars,omitempty,flow"`
}

type TransitionSpec struct {
	From string  `yaml:"from"`
	To   Targets `yaml:"to"`
}

// Targets accepts either a single state name or a list of names.
type Targets []string

func (t *Targets) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*t = Targets{n.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return err
		}
		*t = names
		return nil
	}
	return fmt.Errorf("line %d: transition target must be a name or a list of names", n.Line)
}

func (t Targets) MarshalYAML() (any, error) {
	if len(t) == 1 {
		return t[0], nil
	}
	return []string(t), nil
}

type CheckSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Formula     string `yaml:"formula"`
	From        string `yaml:"from,omitempty"`
	Expect      *bool  `yaml:"expect,omitempty"`
}

// Load reads and validates a model file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a model document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// constant names always mean the formula constants, never a label or prop.
var constant = map[string]bool{"true": true, "false": true}

// Validate checks names and references. Formulas are checked by Build,
// which needs the propositions to resolve them.
func (f *File) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidFile}, args...)...))
	}

	if f.Name == "" {
		bad("missing model name")
	}
	if len(f.States) == 0 {
		bad("no states")
	}

	known := make(map[string]bool, len(f.States))
	for i, s := range f.States {
		switch {
		case s.Name == "":
			bad("state %d has no name", i)
		case known[s.Name]:
			bad("duplicate state %q", s.Name)
		}
		known[s.Name] = true
		for _, label := range s.Props {
			if constant[label] {
				bad("state %q: label %q is reserved", s.Name, label)
			}
		}
	}

	if f.Root != "" && !known[f.Root] {
		bad("root %q is not a state", f.Root)
	}

	for i, tr := range f.Transitions {
		if !known[tr.From] {
			bad("transition %d: unknown source %q", i, tr.From)
		}
		if len(tr.To) == 0 {
			bad("transition %d: no target", i)
		}
		for _, to := range tr.To {
			if !known[to] {
				bad("transition %d: unknown target %q", i, to)
			}
		}
	}

	for name, src := range f.Props {
		if src == "" {
			bad("prop %q has an empty expression", name)
		}
		if constant[name] {
			bad("prop %q is reserved", name)
		}
	}

	checks := make(map[string]bool, len(f.Checks))
	for i, c := range f.Checks {
		switch {
		case c.Name == "":
			bad("check %d has no name", i)
		case checks[c.Name]:
			bad("duplicate check %q", c.Name)
		}
		checks[c.Name] = true
		if c.Formula == "" {
			bad("check %q has no formula", c.Name)
		}
		if c.From != "" && !known[c.From] {
			bad("check %q: unknown start %q", c.Name, c.From)
		}
	}

	return errors.Join(errs...)
}

// Expectations maps check names to their expected verdicts, for the
// checks that declare one.
func (f *File) Expectations() map[string]bool {
	out := make(map[string]bool)
	for _, c := range f.Checks {
		if c.Expect != nil {
			out[c.Name] = *c.Expect
		}
	}
	return out
}

// Marshal encodes the file as YAML with two-space indentation.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
