package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rfielding/ctlcheck/store"
)

func (a *app) historyCmd() *cobra.Command {
	var check string
	cmd := &cobra.Command{
		Use:   "history [model]",
		Short: "Show verdicts recorded with --store",
		Long: `Without a model, list the models with recorded runs. With a model,
list its runs oldest first, or only the latest run of --check.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.storePath == "" {
				return errors.New("no history store: set --store or CTLCHECK_STORE")
			}
			s, err := store.Open(a.storePath)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 0 {
				names, err := s.Models()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(a.out, name)
				}
				return nil
			}

			var runs []store.Run
			if check != "" {
				r, ok, err := s.Latest(args[0], check)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no runs of %s/%s", args[0], check)
				}
				runs = []store.Run{r}
			} else if runs, err = s.Runs(args[0]); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AT\tBATCH\tCHECK\tHOLDS\tSATISFYING\tFORMULA")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%s\n",
					r.At.Format(time.RFC3339), shortBatch(r.Batch), r.Check, r.Holds, len(r.Satisfying), r.Formula)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "Show only the latest run of this check")
	return cmd
}

func shortBatch(b string) string {
	if len(b) > 8 {
		return b[:8]
	}
	return b
}
