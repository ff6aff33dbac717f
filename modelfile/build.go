package modelfile

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/rfielding/ctlcheck/kripke"
)

type buildConfig struct {
	logger *slog.Logger
}

type BuildOption func(*buildConfig)

// WithLogger receives proposition evaluation failures at debug level.
func WithLogger(l *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newBuildConfig(opts []BuildOption) buildConfig {
	cfg := buildConfig{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Build turns the file into a model: one graph node per state in file
// order, the declared root (or the first state), and one check per entry
// with its formula parsed against the file's propositions.
func (f *File) Build(opts ...BuildOption) (*kripke.Model, error) {
	cfg := newBuildConfig(opts)
	if err := f.Validate(); err != nil {
		return nil, err
	}

	g := kripke.NewStateGraph()
	ids := make(map[string]kripke.NodeID, len(f.States))
	for _, s := range f.States {
		ids[s.Name] = g.AddState(kripke.NewState(s.Name, s.Vars, s.Props...))
	}
	if f.Root != "" {
		if err := g.SetRoot(ids[f.Root]); err != nil {
			return nil, err
		}
	}
	for _, tr := range f.Transitions {
		for _, to := range tr.To {
			if err := g.AddTransition(ids[tr.From], ids[to]); err != nil {
				return nil, fmt.Errorf("transition %s -> %s: %w", tr.From, to, err)
			}
		}
	}

	resolve, err := f.resolver(cfg)
	if err != nil {
		return nil, err
	}

	m := kripke.NewModel(f.Name, g)
	m.Description = f.Description
	for _, c := range f.Checks {
		formula, err := kripke.Parse(c.Formula, resolve)
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", c.Name, err)
		}
		check := kripke.Check{Name: c.Name, Description: c.Description, Formula: formula}
		if c.From != "" {
			start := ids[c.From]
			check.Start = &start
		}
		m.AddFormula(check)
	}
	return m, nil
}

// Resolver compiles the file's propositions for parsing formulas that
// are not part of the file, such as ad-hoc queries against a built model.
// Names that are neither a proposition nor a label of some state do not
// resolve.
func (f *File) Resolver(opts ...BuildOption) (kripke.PropResolver, error) {
	return f.resolver(newBuildConfig(opts))
}

func (f *File) resolver(cfg buildConfig) (kripke.PropResolver, error) {
	table := make(map[string]kripke.Predicate, len(f.Props))
	for name, src := range f.Props {
		p, err := compileProp(name, src, cfg.logger)
		if err != nil {
			return nil, err
		}
		table[name] = p.Predicate()
	}
	return kripke.Props(table, f.labels()), nil
}

// labels resolves the labels carried by at least one state, so that a
// misspelled name is reported instead of matching nothing.
func (f *File) labels() kripke.PropResolver {
	used := make(map[string]bool)
	for _, s := range f.States {
		for _, label := range s.Props {
			used[label] = true
		}
	}
	return func(name string) (kripke.Predicate, bool) {
		if !used[name] {
			return nil, false
		}
		return kripke.HasProp(name), true
	}
}

// FromModel exports a model. Formulas are written in their canonical
// text form. props supplies JavaScript for propositions that are not
// plain state labels; names missing from it are treated as labels when
// the file is built again.
func FromModel(m *kripke.Model, props map[string]string) *File {
	f := &File{Name: m.Name, Description: m.Description}
	g := m.Graph

	if root, ok := g.Root(); ok {
		f.Root = g.Name(root)
	}
	for _, id := range g.IDs() {
		s, _ := g.State(id)
		f.States = append(f.States, StateSpec{Name: s.Name(), Props: s.Props(), Vars: s.Vars()})
		succ := g.Successors(id)
		if len(succ) == 0 {
			continue
		}
		tr := TransitionSpec{From: s.Name()}
		for _, to := range succ {
			tr.To = append(tr.To, g.Name(to))
		}
		f.Transitions = append(f.Transitions, tr)
	}

	if len(props) > 0 {
		f.Props = make(map[string]string, len(props))
		for k, v := range props {
			f.Props[k] = v
		}
	}

	for _, c := range m.Formulas() {
		spec := CheckSpec{Name: c.Name, Description: c.Description, Formula: c.Formula.String()}
		if c.Start != nil {
			spec.From = g.Name(*c.Start)
		}
		f.Checks = append(f.Checks, spec)
	}
	return f
}

// PropNames lists the propositions defined by the file, sorted.
func (f *File) PropNames() []string {
	names := make([]string, 0, len(f.Props))
	for name := range f.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
