package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rfielding/ctlcheck/modelfile"
	"github.com/rfielding/ctlcheck/models"
)

func (a *app) examplesCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "examples [name]",
		Short: "List, verify or export the built-in models",
		Long: `Without a name, list the built-in models. With a name, verify that
model's checks, or print it as a model file with --yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tSTATES\tCHECKS\tDESCRIPTION")
				all := models.All()
				for _, name := range models.Names() {
					m := all[name]()
					fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, m.Graph.Len(), len(m.Formulas()), m.Description)
				}
				return tw.Flush()
			}

			build, ok := models.All()[args[0]]
			if !ok {
				return fmt.Errorf("no built-in model %q (have %v)", args[0], models.Names())
			}
			m := build()
			if asYAML {
				data, err := modelfile.FromModel(m, models.Expressions(args[0])).Marshal()
				if err != nil {
					return err
				}
				_, err = a.out.Write(data)
				return err
			}

			results, err := a.verify(cmd.Context(), m, "", nil)
			if err != nil {
				return err
			}
			return writeTable(a.out, m.Graph, results, nil)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the model as a model file")
	return cmd
}
