package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rfielding/ctlcheck/kripke"
	"github.com/rfielding/ctlcheck/modelfile"
	"github.com/rfielding/ctlcheck/report"
)

func (a *app) evalCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "eval <model.yaml> <formula>",
		Short: "Print the states satisfying an ad-hoc formula",
		Long: `Evaluate a formula against a model file and print its satisfying
states. Identifiers resolve to the file's props, then to state labels.

Without --from the whole graph is evaluated. With --from only the states
reachable from that state are, and the verdict at that state is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, m, err := a.load(args[0])
			if err != nil {
				return err
			}
			formula, err := a.parse(f, args[1])
			if err != nil {
				return err
			}

			e := kripke.NewEvaluator(kripke.WithLogger(a.logger))
			g := m.Graph
			if from == "" {
				fmt.Fprintln(a.out, report.StateNames(g, e.Evaluate(g, formula)))
				return nil
			}
			start, ok := g.Lookup(from)
			if !ok {
				return fmt.Errorf("--from %q: %w", from, kripke.ErrNodeNotFound)
			}
			sat := e.EvaluateFrom(g, formula, start)
			fmt.Fprintln(a.out, report.StateNames(g, sat))
			fmt.Fprintf(a.out, "%s at %s: %t\n", formula, from, sat.Has(start))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Evaluate from this state only")
	return cmd
}

// parse reads src against the propositions of f.
func (a *app) parse(f *modelfile.File, src string) (kripke.Formula, error) {
	resolve, err := f.Resolver(modelfile.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return kripke.Parse(src, resolve)
}
