package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rfielding/ctlcheck/kripke"
	"github.com/rfielding/ctlcheck/report"
)

func (a *app) diagramCmd() *cobra.Command {
	var (
		format    string
		highlight string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "diagram <model.yaml>",
		Short: "Draw the state graph as Mermaid or Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, m, err := a.load(args[0])
			if err != nil {
				return err
			}

			opts := []report.Option{report.WithProps()}
			if highlight != "" {
				formula, err := a.parse(f, highlight)
				if err != nil {
					return err
				}
				e := kripke.NewEvaluator(kripke.WithLogger(a.logger))
				opts = append(opts, report.WithHighlight(e.Evaluate(m.Graph, formula)))
			}

			var draw func(io.Writer, *kripke.StateGraph, ...report.Option) error
			switch format {
			case "mermaid":
				draw = report.Mermaid
			case "dot":
				draw = report.DOT
			default:
				return fmt.Errorf("--format %q: want mermaid or dot", format)
			}
			return a.writeOutput(output, func(w io.Writer) error {
				return draw(w, m.Graph, opts...)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "mermaid", "Diagram format: mermaid or dot")
	cmd.Flags().StringVar(&highlight, "highlight", "", "Highlight the states satisfying this formula")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
