package kripke

import (
	"errors"
	"fmt"
	"strings"
)

// Op tags Unary and Binary formula nodes.
type Op int

const (
	OpNot Op = iota + 1
	OpEX
	OpAX
	OpEF
	OpAF
	OpEG
	OpAG
	OpAnd
	OpOr
	OpEU
	OpAU
)

var opNames = map[Op]string{
	OpNot: "NOT",
	OpEX:  "EX",
	OpAX:  "AX",
	OpEF:  "EF",
	OpAF:  "AF",
	OpEG:  "EG",
	OpAG:  "AG",
	OpAnd: "AND",
	OpOr:  "OR",
	OpEU:  "EU",
	OpAU:  "AU",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func (o Op) IsUnary() bool  { return o >= OpNot && o <= OpAG }
func (o Op) IsBinary() bool { return o >= OpAnd && o <= OpAU }

// ParseOp maps an operator name such as "EG" or "and" to its tag.
func ParseOp(s string) (Op, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for op, name := range opNames {
		if name == up {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidOperator)
}

// Formula is an immutable CTL state formula: *Atomic, *Unary or *Binary.
type Formula interface {
	fmt.Stringer
	isFormula()
}

// Atomic holds in the states its predicate accepts.
type Atomic struct {
	Name string
	Pred Predicate
}

// Unary applies NOT or a single-path temporal operator to Sub.
type Unary struct {
	Op  Op
	Sub Formula
}

// Binary combines two sub-formulas with AND, OR, EU or AU.
type Binary struct {
	Op          Op
	Left, Right Formula
}

func (*Atomic) isFormula() {}
func (*Unary) isFormula()  {}
func (*Binary) isFormula() {}

func (a *Atomic) String() string {
	if a == nil {
		return "<nil>"
	}
	return quoteName(a.Name)
}

func (u *Unary) String() string {
	if u == nil {
		return "<nil>"
	}
	if u.Op == OpNot {
		return fmt.Sprintf("¬%s", str(u.Sub))
	}
	return fmt.Sprintf("%s %s", u.Op, str(u.Sub))
}

func (b *Binary) String() string {
	if b == nil {
		return "<nil>"
	}
	switch b.Op {
	case OpAnd:
		return fmt.Sprintf("(%s ∧ %s)", str(b.Left), str(b.Right))
	case OpOr:
		return fmt.Sprintf("(%s ∨ %s)", str(b.Left), str(b.Right))
	case OpEU:
		return fmt.Sprintf("E[%s U %s]", str(b.Left), str(b.Right))
	case OpAU:
		return fmt.Sprintf("A[%s U %s]", str(b.Left), str(b.Right))
	}
	return fmt.Sprintf("%s(%s, %s)", b.Op, str(b.Left), str(b.Right))
}

func str(f Formula) string {
	if isNil(f) {
		return "<nil>"
	}
	return f.String()
}

// isNil catches both a nil interface and a typed nil pointer.
func isNil(f Formula) bool {
	switch v := f.(type) {
	case nil:
		return true
	case *Atomic:
		return v == nil
	case *Unary:
		return v == nil
	case *Binary:
		return v == nil
	}
	return false
}

// ----- Constructors -----

func Atom(name string, pred Predicate) Formula { return &Atomic{Name: name, Pred: pred} }

// Prop is an Atom that holds in states labeled name.
func Prop(name string) Formula { return Atom(name, HasProp(name)) }

func True() Formula  { return Atom("true", Always()) }
func False() Formula { return Atom("false", Never()) }

func NewUnary(op Op, sub Formula) Formula          { return &Unary{Op: op, Sub: sub} }
func NewBinary(op Op, left, right Formula) Formula { return &Binary{Op: op, Left: left, Right: right} }

func Not(f Formula) Formula { return NewUnary(OpNot, f) }
func EX(f Formula) Formula  { return NewUnary(OpEX, f) }
func AX(f Formula) Formula  { return NewUnary(OpAX, f) }
func EF(f Formula) Formula  { return NewUnary(OpEF, f) }
func AF(f Formula) Formula  { return NewUnary(OpAF, f) }
func EG(f Formula) Formula  { return NewUnary(OpEG, f) }
func AG(f Formula) Formula  { return NewUnary(OpAG, f) }

func And(l, r Formula) Formula { return NewBinary(OpAnd, l, r) }
func Or(l, r Formula) Formula  { return NewBinary(OpOr, l, r) }
func EU(l, r Formula) Formula  { return NewBinary(OpEU, l, r) }
func AU(l, r Formula) Formula  { return NewBinary(OpAU, l, r) }

// Implies is sugar for ¬l ∨ r.
func Implies(l, r Formula) Formula { return Or(Not(l), r) }

// Validate reports every nil sub-formula, nil predicate and misplaced
// operator tag in f.
func Validate(f Formula) error {
	var errs []error
	validate(f, "", &errs)
	return errors.Join(errs...)
}

func validate(f Formula, path string, errs *[]error) {
	at := path
	if at == "" {
		at = "root"
	}
	if isNil(f) {
		*errs = append(*errs, fmt.Errorf("%s: %w", at, ErrNilFormula))
		return
	}
	switch v := f.(type) {
	case *Atomic:
		if v.Pred == nil {
			*errs = append(*errs, fmt.Errorf("%s: atom %q has no predicate: %w", at, v.Name, ErrNilFormula))
		}
	case *Unary:
		if !v.Op.IsUnary() {
			*errs = append(*errs, fmt.Errorf("%s: %s in unary node: %w", at, v.Op, ErrInvalidOperator))
		}
		validate(v.Sub, path+"/"+v.Op.String(), errs)
	case *Binary:
		if !v.Op.IsBinary() {
			*errs = append(*errs, fmt.Errorf("%s: %s in binary node: %w", at, v.Op, ErrInvalidOperator))
		}
		validate(v.Left, path+"/"+v.Op.String()+".left", errs)
		validate(v.Right, path+"/"+v.Op.String()+".right", errs)
	}
}
