package modelfile

import (
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/rfielding/ctlcheck/kripke"
)

// jsProp is a compiled proposition. The program is shared; every
// evaluation runs it in a new runtime with the state's variables bound
// as globals, so nothing a script declares outlives the call.
type jsProp struct {
	name   string
	src    string
	prog   *goja.Program
	logger *slog.Logger
}

func compileProp(name, src string, logger *slog.Logger) (*jsProp, error) {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("prop %q: %w", name, err)
	}
	return &jsProp{name: name, src: src, prog: prog, logger: logger}, nil
}

// Predicate adapts the proposition to a kripke.Predicate. A script error
// or a non-boolean result counts as false.
func (p *jsProp) Predicate() kripke.Predicate {
	return func(s kripke.State) bool {
		ok, err := p.eval(s)
		if err != nil {
			p.logger.Debug("modelfile: prop evaluation failed",
				"prop", p.name, "state", s.Name(), "error", err)
			return false
		}
		return ok
	}
}

func (p *jsProp) eval(s kripke.State) (result bool, err error) {
	vm := goja.New()
	vm.Set("name", s.Name())
	vm.Set("props", s.Props())
	vm.Set("has", s.HasProp)
	for k, v := range s.Vars() {
		vm.Set(k, v)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	v, err := vm.RunProgram(p.prog)
	if err != nil {
		return false, err
	}
	b, ok := v.Export().(bool)
	if !ok {
		return false, fmt.Errorf("result %v is not a boolean", v)
	}
	return b, nil
}
