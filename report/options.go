package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rfielding/ctlcheck/kripke"
)

// Option configures diagram and report generation.
type Option func(*options)

type options struct {
	highlight kripke.StateSet
	showProps bool
	expect    map[string]bool
	gatherer  prometheus.Gatherer
}

func collect(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithHighlight marks the given states, typically a satisfying set.
func WithHighlight(s kripke.StateSet) Option {
	return func(o *options) { o.highlight = s }
}

// WithProps annotates each state with its labels.
func WithProps() Option {
	return func(o *options) { o.showProps = true }
}

// WithExpectations adds an Expected column to the requirement table.
func WithExpectations(expect map[string]bool) Option {
	return func(o *options) { o.expect = expect }
}

// WithMetrics appends a metrics section gathered from g.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *options) { o.gatherer = g }
}
