package rules

import (
	"github.com/arthur-debert/instkit/pkg/variables"
	"github.com/rs/zerolog"
)

// Condition is a named boolean predicate over install-time state.
//
// The set of implementations is closed; hosts plug in their own logic
// through Custom conditions backed by registered predicates.
type Condition interface {
	// ID returns the identifier the condition is registered under
	ID() string

	// SetID changes the identifier. Only meaningful before registration.
	SetID(id string)

	// Type returns the type name used in condition documents
	Type() string

	// IsTrue evaluates the condition
	IsTrue(ev *Evaluation) bool

	// Params returns the type-specific attributes for serialization
	Params() map[string]string

	condition()
}

// Composite is implemented by conditions built from operand conditions
type Composite interface {
	Condition

	// Operands returns the operands in evaluation order
	Operands() []Condition

	// SetOperand replaces the operand at index i
	SetOperand(i int, c Condition)
}

// base carries the identifier shared by all conditions
type base struct {
	id string
}

func (b *base) ID() string      { return b.id }
func (b *base) SetID(id string) { b.id = id }
func (b *base) condition()      {}

// Evaluation carries the state a condition is evaluated against
type Evaluation struct {
	engine *Engine
	vars   *variables.Variables
	active map[Condition]bool
}

// Variables returns the variable bindings of this evaluation
func (ev *Evaluation) Variables() *variables.Variables {
	return ev.vars
}

// Engine returns the engine the evaluation runs in
func (ev *Evaluation) Engine() *Engine {
	return ev.engine
}

// Eval evaluates a nested condition
func (ev *Evaluation) Eval(c Condition) bool {
	if c == nil {
		return false
	}
	if ev.active[c] {
		ev.logger().Error().
			Str("condition", c.ID()).
			Msg("Condition refers back to itself")
		return false
	}
	if ev.active == nil {
		ev.active = make(map[Condition]bool)
	}
	ev.active[c] = true
	defer delete(ev.active, c)
	return c.IsTrue(ev)
}

func (ev *Evaluation) logger() *zerolog.Logger {
	return &ev.engine.logger
}
