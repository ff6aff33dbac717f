package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rfielding/ctlcheck/kripke"
	"github.com/rfielding/ctlcheck/metrics"
	"github.com/rfielding/ctlcheck/modelfile"
	"github.com/rfielding/ctlcheck/report"
	"github.com/rfielding/ctlcheck/store"
)

func (a *app) checkCmd() *cobra.Command {
	var (
		from        string
		jsonOut     bool
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "check <model.yaml>",
		Short: "Verify every check in a model file",
		Long: `Build the model and verify all of its checks concurrently.

Each check is evaluated over the states reachable from its start state
(the check's "from", the model root, or --from). The command exits with
status 1 when a verdict differs from the check's "expect" value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, m, err := a.load(args[0])
			if err != nil {
				return err
			}

			var reg *prometheus.Registry
			if showMetrics {
				reg = prometheus.NewRegistry()
			}
			results, err := a.verify(cmd.Context(), m, from, reg)
			if err != nil {
				return err
			}

			if a.storePath != "" {
				if err := a.record(m, results); err != nil {
					return err
				}
			}

			expect := f.Expectations()
			if jsonOut {
				if err := writeJSON(a.out, m.Graph, results, expect); err != nil {
					return err
				}
			} else if err := writeTable(a.out, m.Graph, results, expect); err != nil {
				return err
			}

			if reg != nil {
				fmt.Fprintln(a.out)
				if err := report.MetricsTable(a.out, reg); err != nil {
					return err
				}
			}
			return verdictError(results, expect)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Evaluate every check from this state instead")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print evaluator metrics after the results")
	return cmd
}

// load reads and builds a model file with the command's logger.
func (a *app) load(path string) (*modelfile.File, *kripke.Model, error) {
	f, err := modelfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := f.Build(modelfile.WithLogger(a.logger))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Info("model loaded", "model", m.Name, "states", m.Graph.Len(), "transitions", m.Graph.EdgeCount())
	return f, m, nil
}

// verify runs every check of m concurrently. A non-empty from overrides
// each check's start state. When reg is set the evaluator reports to a
// metrics collector registered there.
func (a *app) verify(ctx context.Context, m *kripke.Model, from string, reg *prometheus.Registry) ([]kripke.Result, error) {
	opts := []kripke.Option{kripke.WithLogger(a.logger)}
	if reg != nil {
		c, err := metrics.NewCollector(reg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kripke.WithObserver(c))
	}
	e := kripke.NewEvaluator(opts...)

	checks := m.Formulas()
	if from != "" {
		id, ok := m.Graph.Lookup(from)
		if !ok {
			return nil, fmt.Errorf("--from %q: %w", from, kripke.ErrNodeNotFound)
		}
		for i := range checks {
			checks[i].Start = &id
		}
	}

	ctx, span := a.tracer.Start(ctx, "verify "+m.Name,
		trace.WithAttributes(attribute.Int("ctl.checks", len(checks))))
	defer span.End()

	results := make([]kripke.Result, len(checks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range checks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.verifyOne(ctx, e, m, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *app) verifyOne(ctx context.Context, e *kripke.Evaluator, m *kripke.Model, c kripke.Check) kripke.Result {
	_, span := a.tracer.Start(ctx, "check "+c.Name,
		trace.WithAttributes(attribute.String("ctl.formula", c.Formula.String())))
	defer span.End()

	start := time.Now()
	r := m.VerifyOne(e, c)
	span.SetAttributes(
		attribute.Int("ctl.satisfying", r.Satisfying.Len()),
		attribute.Bool("ctl.holds", r.Holds),
	)
	if r.Err != nil {
		span.RecordError(r.Err)
		span.SetStatus(codes.Error, "evaluation failed")
		a.logger.Warn("check failed to evaluate", "check", c.Name, "error", r.Err)
	} else {
		a.logger.Debug("check evaluated", "check", c.Name, "holds", r.Holds,
			"satisfying", r.Satisfying.Len(), "elapsed", time.Since(start))
	}
	return r
}

// record appends the results to the history store as one batch.
func (a *app) record(m *kripke.Model, results []kripke.Result) error {
	s, err := store.Open(a.storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	batch := uuid.NewString()
	at := time.Now().UTC()
	recorded := 0
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		sat := make([]int, 0, r.Satisfying.Len())
		for _, id := range r.Satisfying.Sorted() {
			sat = append(sat, int(id))
		}
		err := s.Record(store.Run{
			Batch:      batch,
			Model:      m.Name,
			Check:      r.Check.Name,
			Formula:    r.Check.Formula.String(),
			Holds:      r.Holds,
			Satisfying: sat,
			At:         at,
		})
		if err != nil {
			return err
		}
		recorded++
	}
	a.logger.Info("results recorded", "store", a.storePath, "batch", batch, "runs", recorded)
	return nil
}

func writeTable(w io.Writer, g *kripke.StateGraph, results []kripke.Result, expect map[string]bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tRESULT\tEXPECTED\tFROM\tFORMULA")
	for _, r := range results {
		exp := "-"
		if v, ok := expect[r.Check.Name]; ok {
			exp = fmt.Sprint(v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Check.Name, report.Verdict(g, r), exp, g.Name(r.Start), r.Check.Formula)
	}
	return tw.Flush()
}

type checkOutput struct {
	Check      string   `json:"check"`
	Formula    string   `json:"formula"`
	From       string   `json:"from"`
	Holds      bool     `json:"holds"`
	Expected   *bool    `json:"expected,omitempty"`
	Satisfying []string `json:"satisfying"`
	Error      string   `json:"error,omitempty"`
}

func writeJSON(w io.Writer, g *kripke.StateGraph, results []kripke.Result, expect map[string]bool) error {
	out := make([]checkOutput, 0, len(results))
	for _, r := range results {
		o := checkOutput{
			Check:      r.Check.Name,
			Formula:    r.Check.Formula.String(),
			From:       g.Name(r.Start),
			Holds:      r.Holds,
			Satisfying: []string{},
		}
		if v, ok := expect[r.Check.Name]; ok {
			o.Expected = &v
		}
		for _, id := range r.Satisfying.Sorted() {
			o.Satisfying = append(o.Satisfying, g.Name(id))
		}
		if r.Err != nil {
			o.Error = r.Err.Error()
		}
		out = append(out, o)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// verdictError is a mismatchError for checks that contradict their
// expectation, a plain error if a check failed to evaluate, or nil.
func verdictError(results []kripke.Result, expect map[string]bool) error {
	var (
		mismatched []string
		failed     int
	)
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		if v, ok := expect[r.Check.Name]; ok && v != r.Holds {
			mismatched = append(mismatched, r.Check.Name)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) could not be evaluated", failed)
	}
	if len(mismatched) > 0 {
		return &mismatchError{checks: mismatched}
	}
	return nil
}
