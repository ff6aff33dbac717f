package kripke

// Observer receives progress reports from an Evaluator. Implementations
// must be safe for concurrent use when the Evaluator is shared.
type Observer interface {
	// Evaluated is called once per formula node after its set is computed.
	Evaluated(f Formula, size int)
	// FixpointStep is called after every iteration of a fixpoint loop
	// with the accumulator size at that point.
	FixpointStep(op Op, iteration, size int)
	// FixpointDone is called when a fixpoint loop has converged.
	FixpointDone(op Op, iterations, size int)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnEvaluated    func(f Formula, size int)
	OnFixpointStep func(op Op, iteration, size int)
	OnFixpointDone func(op Op, iterations, size int)
}

func (o ObserverFuncs) Evaluated(f Formula, size int) {
	if o.OnEvaluated != nil {
		o.OnEvaluated(f, size)
	}
}

func (o ObserverFuncs) FixpointStep(op Op, iteration, size int) {
	if o.OnFixpointStep != nil {
		o.OnFixpointStep(op, iteration, size)
	}
}

func (o ObserverFuncs) FixpointDone(op Op, iterations, size int) {
	if o.OnFixpointDone != nil {
		o.OnFixpointDone(op, iterations, size)
	}
}

// OpOf returns the operator tag of f, or zero for atoms.
func OpOf(f Formula) Op {
	switch v := f.(type) {
	case *Unary:
		if v != nil {
			return v.Op
		}
	case *Binary:
		if v != nil {
			return v.Op
		}
	}
	return 0
}
