package main

import (
	"bytes"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rfielding/ctlcheck/report"
)

func (a *app) reportCmd() *cobra.Command {
	var (
		html        bool
		output      string
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "report <model.yaml>",
		Short: "Write a Markdown or HTML verification report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, m, err := a.load(args[0])
			if err != nil {
				return err
			}
			var reg *prometheus.Registry
			if showMetrics {
				reg = prometheus.NewRegistry()
			}
			results, err := a.verify(cmd.Context(), m, "", reg)
			if err != nil {
				return err
			}

			opts := []report.Option{report.WithExpectations(f.Expectations())}
			if reg != nil {
				opts = append(opts, report.WithMetrics(reg))
			}
			var md bytes.Buffer
			if err := report.Markdown(&md, m, results, opts...); err != nil {
				return err
			}

			return a.writeOutput(output, func(w io.Writer) error {
				if html {
					return report.HTML(w, md.Bytes(), m.Name)
				}
				_, err := w.Write(md.Bytes())
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "Render the report as a standalone HTML page")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Include evaluator metrics")
	return cmd
}

// writeOutput sends write's output to path, or to stdout when path is empty.
func (a *app) writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(a.out)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("wrote file", "path", path)
	return nil
}
