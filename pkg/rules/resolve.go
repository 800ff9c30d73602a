package rules

import (
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
)

// ResolveReferences binds every reference to its live target, swaps stale
// copies of built-in conditions for the engine's own instances and rejects
// reference cycles. Calling it again has no further effect.
func (e *Engine) ResolveReferences() error {
	visited := make(map[Condition]bool)
	unresolved := 0
	for _, id := range e.Conditions() {
		unresolved += e.resolve(e.conditions[id], visited)
	}
	if unresolved > 0 {
		e.logger.Warn().Int("count", unresolved).Msg("Unresolved condition references")
	}
	return e.checkCycles()
}

// resolve walks c and its operands once, returning the number of
// references left unbound
func (e *Engine) resolve(c Condition, visited map[Condition]bool) int {
	if c == nil || visited[c] {
		return 0
	}
	visited[c] = true

	unresolved := 0
	switch v := c.(type) {
	case *Ref:
		v.target = e.conditions[v.refID]
		if v.target == nil {
			e.logger.Warn().Str("condition", v.ID()).Str("refid", v.refID).Msg("Reference does not resolve")
			unresolved++
		}
	case Composite:
		e.replaceBuiltins(v)
		for _, op := range v.Operands() {
			unresolved += e.resolve(op, visited)
		}
	}
	return unresolved
}

// replaceBuiltins swaps operands carrying a built-in id for the engine's
// authoritative instance
func (e *Engine) replaceBuiltins(c Composite) {
	for i, op := range c.Operands() {
		if op == nil {
			continue
		}
		if builtin, ok := e.builtins[op.ID()]; ok && builtin != op {
			e.logger.Debug().
				Str("condition", c.ID()).
				Str("builtin", op.ID()).
				Msg("Replacing stale built-in operand")
			c.SetOperand(i, builtin)
		}
	}
}

// checkCycles fails when a condition reaches itself through operands or
// bound references
func (e *Engine) checkCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[Condition]int)

	var visit func(c Condition, path []string) error
	visit = func(c Condition, path []string) error {
		path = append(path[:len(path):len(path)], c.ID())
		switch state[c] {
		case visiting:
			return errors.Newf(errors.ErrConditionCycle, "condition reference cycle: %s", strings.Join(path, " -> ")).
				WithDetail("condition", c.ID())
		case done:
			return nil
		}
		state[c] = visiting
		for _, next := range successors(c) {
			if err := visit(next, path); err != nil {
				return err
			}
		}
		state[c] = done
		return nil
	}

	for _, id := range e.Conditions() {
		if err := visit(e.conditions[id], nil); err != nil {
			return err
		}
	}
	return nil
}

func successors(c Condition) []Condition {
	var next []Condition
	switch v := c.(type) {
	case *Ref:
		if v.target != nil {
			next = append(next, v.target)
		}
	case Composite:
		for _, op := range v.Operands() {
			if op != nil {
				next = append(next, op)
			}
		}
	}
	return next
}
