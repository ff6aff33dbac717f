// Command ctlcheck verifies CTL properties of Kripke models described in
// YAML files, draws their state graphs and keeps a history of verdicts.
//
// Exit codes:
//
//	0  every check ran and matched its expected verdict
//	1  some check disagreed with its expected verdict
//	2  usage, model or evaluation error
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const (
	exitOK       = 0
	exitMismatch = 1
	exitError    = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := newApp(out, errOut)
	root := a.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if serr := a.close(context.WithoutCancel(ctx)); serr != nil {
		fmt.Fprintln(errOut, "ctlcheck:", serr)
	}

	var mismatch *mismatchError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &mismatch):
		fmt.Fprintln(errOut, "ctlcheck:", err)
		return exitMismatch
	default:
		fmt.Fprintln(errOut, "ctlcheck:", err)
		return exitError
	}
}

// mismatchError reports checks whose verdict differs from the model
// file's expect field.
type mismatchError struct {
	checks []string
}

func (e *mismatchError) Error() string {
	return fmt.Sprintf("%d check(s) did not match the expected verdict: %v", len(e.checks), e.checks)
}
