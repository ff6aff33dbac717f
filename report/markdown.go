package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rfielding/ctlcheck/kripke"
)

// Verdict summarises a result for tables. PARTIAL means the formula
// fails at the start state but holds somewhere in the evaluated scope.
func Verdict(g *kripke.StateGraph, r kripke.Result) string {
	switch {
	case r.Err != nil:
		return "💥 ERROR"
	case r.Holds:
		return "✅ PASS"
	case r.Satisfying.Len() > 0:
		return fmt.Sprintf("⚠️ PARTIAL (%d/%d)", r.Satisfying.Len(), g.Reachable(r.Start).Len())
	}
	return "❌ FAIL"
}

// StateNames renders a set as the sorted list of its state names.
func StateNames(g *kripke.StateGraph, s kripke.StateSet) string {
	ids := s.Sorted()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.Name(id)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Markdown writes a verification report: the requirement table, the
// satisfying states of each check, a state diagram and the deadlocked
// states. WithExpectations and WithMetrics add to it.
func Markdown(w io.Writer, m *kripke.Model, results []kripke.Result, opts ...Option) error {
	o := collect(opts)
	g := m.Graph

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", m.Name)
	if m.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", m.Description)
	}
	fmt.Fprintf(&sb, "%d states, %d transitions.\n\n", g.Len(), g.EdgeCount())

	sb.WriteString("## Requirements\n\n")
	if o.expect != nil {
		sb.WriteString("| Check | Requirement | CTL Formula | Result | Expected |\n")
		sb.WriteString("|-------|-------------|-------------|--------|----------|\n")
	} else {
		sb.WriteString("| Check | Requirement | CTL Formula | Result |\n")
		sb.WriteString("|-------|-------------|-------------|--------|\n")
	}
	for _, r := range results {
		fmt.Fprintf(&sb, "| %s | %s | `%s` | %s |",
			cell(r.Check.Name), cell(r.Check.Description), cell(formulaText(r.Check.Formula)), Verdict(g, r))
		if o.expect != nil {
			exp, ok := o.expect[r.Check.Name]
			switch {
			case !ok:
				sb.WriteString(" - |")
			case exp == r.Holds && r.Err == nil:
				fmt.Fprintf(&sb, " %t ✓ |", exp)
			default:
				fmt.Fprintf(&sb, " %t ✗ |", exp)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Satisfying states\n\n")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(&sb, "- **%s**: error: %v\n", r.Check.Name, r.Err)
			continue
		}
		fmt.Fprintf(&sb, "- **%s** from `%s`: %s\n", r.Check.Name, g.Name(r.Start), StateNames(g, r.Satisfying))
	}

	sb.WriteString("\n## State diagram\n\n```mermaid\n")
	if err := Mermaid(&sb, g, WithProps()); err != nil {
		return err
	}
	sb.WriteString("```\n")

	sb.WriteString("\n## Deadlocks\n\n")
	if dead := g.Terminals(); dead.Len() > 0 {
		fmt.Fprintf(&sb, "States without successors: %s\n", StateNames(g, dead))
	} else {
		sb.WriteString("None.\n")
	}

	if o.gatherer != nil {
		sb.WriteString("\n## Metrics\n\n")
		if err := MetricsTable(&sb, o.gatherer); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formulaText(f kripke.Formula) string {
	if f == nil {
		return "<nil>"
	}
	return f.String()
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
