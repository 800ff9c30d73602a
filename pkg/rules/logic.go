package rules

import "strconv"

// And is true when every operand is true. Evaluation stops at the first false operand.
type And struct {
	base
	operands []Condition
}

// NewAnd creates an and condition
func NewAnd(id string, operands ...Condition) *And {
	return &And{base: base{id: id}, operands: operands}
}

func (c *And) Type() string                  { return TypeAnd }
func (c *And) Params() map[string]string     { return nil }
func (c *And) Operands() []Condition         { return c.operands }
func (c *And) SetOperand(i int, o Condition) { c.operands[i] = o }

func (c *And) IsTrue(ev *Evaluation) bool {
	for _, op := range c.operands {
		if !ev.Eval(op) {
			return false
		}
	}
	return len(c.operands) > 0
}

// Or is true when any operand is true. Evaluation stops at the first true operand.
type Or struct {
	base
	operands []Condition
}

// NewOr creates an or condition
func NewOr(id string, operands ...Condition) *Or {
	return &Or{base: base{id: id}, operands: operands}
}

func (c *Or) Type() string                  { return TypeOr }
func (c *Or) Params() map[string]string     { return nil }
func (c *Or) Operands() []Condition         { return c.operands }
func (c *Or) SetOperand(i int, o Condition) { c.operands[i] = o }

func (c *Or) IsTrue(ev *Evaluation) bool {
	for _, op := range c.operands {
		if ev.Eval(op) {
			return true
		}
	}
	return false
}

// Xor is true when exactly one of its two operands is true
type Xor struct {
	base
	operands []Condition
}

// NewXor creates an xor condition
func NewXor(id string, left, right Condition) *Xor {
	return &Xor{base: base{id: id}, operands: []Condition{left, right}}
}

func (c *Xor) Type() string                  { return TypeXor }
func (c *Xor) Params() map[string]string     { return nil }
func (c *Xor) Operands() []Condition         { return c.operands }
func (c *Xor) SetOperand(i int, o Condition) { c.operands[i] = o }

func (c *Xor) IsTrue(ev *Evaluation) bool {
	return ev.Eval(c.operands[0]) != ev.Eval(c.operands[1])
}

// Not negates its single operand
type Not struct {
	base
	operands []Condition
}

// NewNot creates a not condition
func NewNot(id string, operand Condition) *Not {
	return &Not{base: base{id: id}, operands: []Condition{operand}}
}

func (c *Not) Type() string                  { return TypeNot }
func (c *Not) Params() map[string]string     { return nil }
func (c *Not) Operands() []Condition         { return c.operands }
func (c *Not) SetOperand(i int, o Condition) { c.operands[i] = o }

func (c *Not) IsTrue(ev *Evaluation) bool {
	return !ev.Eval(c.operands[0])
}

// Ref points at another registered condition by id. The target is bound by
// Engine.ResolveReferences or looked up at evaluation time; an id that does
// not resolve evaluates to false.
type Ref struct {
	base
	refID  string
	target Condition
}

// NewRef creates a reference to the condition registered as refID
func NewRef(id, refID string) *Ref {
	return &Ref{base: base{id: id}, refID: refID}
}

func (c *Ref) Type() string { return TypeRef }

func (c *Ref) Params() map[string]string {
	return map[string]string{ParamRefID: c.refID}
}

// RefID returns the id of the referenced condition
func (c *Ref) RefID() string { return c.refID }

// Target returns the bound condition, or nil while unresolved
func (c *Ref) Target() Condition { return c.target }

func (c *Ref) IsTrue(ev *Evaluation) bool {
	target := c.target
	if target == nil {
		target = ev.engine.conditions[c.refID]
	}
	if target == nil {
		ev.logger().Warn().
			Str("condition", c.ID()).
			Str("refid", c.refID).
			Msg("Referenced condition not found, evaluating to false")
		return false
	}
	return ev.Eval(target)
}

// Static has a fixed value, used for built-in platform checks
type Static struct {
	base
	value bool
}

// NewStatic creates a condition that always evaluates to value
func NewStatic(id string, value bool) *Static {
	return &Static{base: base{id: id}, value: value}
}

func (c *Static) Type() string { return TypeStatic }

func (c *Static) Params() map[string]string {
	return map[string]string{ParamValue: strconv.FormatBool(c.value)}
}

// Value returns the fixed result
func (c *Static) Value() bool { return c.value }

func (c *Static) IsTrue(*Evaluation) bool { return c.value }
