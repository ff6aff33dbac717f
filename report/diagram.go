// Package report renders state graphs and verification results as
// Mermaid and Graphviz diagrams, Markdown reports and HTML pages.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rfielding/ctlcheck/kripke"
)

// Mermaid writes g as a Mermaid stateDiagram-v2. The root gets the
// initial arrow, terminal states get a final arrow and parallel edges
// are drawn once.
func Mermaid(w io.Writer, g *kripke.StateGraph, opts ...Option) error {
	o := collect(opts)
	ids := mermaidIDs(g)

	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	for _, id := range g.IDs() {
		if name := g.Name(id); ids[id] != name {
			fmt.Fprintf(&sb, "    state %q as %s\n", name, ids[id])
		}
	}

	if root, ok := g.Root(); ok {
		fmt.Fprintf(&sb, "    [*] --> %s\n", ids[root])
	}

	seen := make(map[[2]kripke.NodeID]bool)
	for _, from := range g.IDs() {
		succ := g.Successors(from)
		if len(succ) == 0 {
			fmt.Fprintf(&sb, "    %s --> [*]\n", ids[from])
			continue
		}
		for _, to := range succ {
			edge := [2]kripke.NodeID{from, to}
			if seen[edge] {
				continue
			}
			seen[edge] = true
			fmt.Fprintf(&sb, "    %s --> %s\n", ids[from], ids[to])
		}
	}

	if o.showProps {
		for _, id := range g.IDs() {
			s, _ := g.State(id)
			if props := s.Props(); len(props) > 0 {
				fmt.Fprintf(&sb, "    %s: %s\n", ids[id], strings.Join(props, ", "))
			}
		}
	}

	if o.highlight.Len() > 0 {
		var names []string
		for _, id := range o.highlight.Sorted() {
			if n, ok := ids[id]; ok {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			sb.WriteString("    classDef sat fill:#c8f7c5,stroke:#27ae60\n")
			fmt.Fprintf(&sb, "    class %s sat\n", strings.Join(names, ","))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// mermaidIDs keeps state names that are valid Mermaid identifiers and
// aliases the rest as s<id>.
func mermaidIDs(g *kripke.StateGraph) map[kripke.NodeID]string {
	ids := make(map[kripke.NodeID]string, g.Len())
	for _, id := range g.IDs() {
		name := g.Name(id)
		if plainIdent(name) {
			ids[id] = name
		} else {
			ids[id] = fmt.Sprintf("s%d", id)
		}
	}
	return ids
}

func plainIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// DOT writes g as a Graphviz digraph with a point-shaped start node
// pointing at the root.
func DOT(w io.Writer, g *kripke.StateGraph, opts ...Option) error {
	o := collect(opts)

	var sb strings.Builder
	sb.WriteString("digraph kripke {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle];\n\n")

	if root, ok := g.Root(); ok {
		sb.WriteString("  start [shape=point];\n")
		fmt.Fprintf(&sb, "  start -> %s;\n\n", dotQuote(g.Name(root)))
	}

	for _, id := range g.IDs() {
		s, _ := g.State(id)
		label := s.Name()
		if props := s.Props(); len(props) > 0 {
			label += "\n{" + strings.Join(props, ", ") + "}"
		}
		attrs := "label=" + dotQuote(label)
		if o.highlight.Has(id) {
			attrs += `, style=filled, fillcolor="#c8f7c5"`
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", dotQuote(s.Name()), attrs)
	}
	sb.WriteString("\n")

	for _, from := range g.IDs() {
		for _, to := range g.Successors(from) {
			fmt.Fprintf(&sb, "  %s -> %s;\n", dotQuote(g.Name(from)), dotQuote(g.Name(to)))
		}
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func dotQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
