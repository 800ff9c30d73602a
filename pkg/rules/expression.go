package rules

import (
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
)

// ComplexPrefix marks a complex expression: "@a&&b||!c"
const ComplexPrefix = "@"

// grammar holds the operator tokens of one expression syntax, from the
// lowest to the highest binding binary operator
type grammar struct {
	or, and, xor string
}

var (
	complexGrammar   = grammar{or: "||", and: "&&", xor: "^"}
	shorthandGrammar = grammar{or: "|", and: "+", xor: `\`}
)

const notToken = "!"

// GetCondition returns the condition registered as id, or builds one from
// a complex ("@" prefixed) or shorthand expression. Conditions built from
// expressions are not registered. It returns nil when nothing resolves.
func (e *Engine) GetCondition(id string) Condition {
	if c, ok := e.conditions[id]; ok {
		return c
	}
	c, err := e.ParseExpression(id)
	if err != nil {
		e.logger.Warn().Err(err).Str("id", id).Msg("Condition not found")
		return nil
	}
	return c
}

// ParseExpression parses a complex or shorthand expression over registered
// condition ids.
//
// Binary operators split at their first occurrence, OR before AND before
// XOR, and a leading NOT binds tightest. In shorthand "a+b|c" is therefore
// (a+b)|c, and so is "@a&&b||c" in the complex form.
func (e *Engine) ParseExpression(expr string) (Condition, error) {
	if rest, ok := strings.CutPrefix(expr, ComplexPrefix); ok {
		c, err := e.parse(complexGrammar, rest)
		if err != nil {
			return nil, err
		}
		if e.conditions[c.ID()] != c {
			c.SetID(expr)
		}
		return c, nil
	}
	return e.parse(shorthandGrammar, expr)
}

func (e *Engine) parse(g grammar, expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New(errors.ErrExpressionSyntax, "empty operand in expression")
	}

	binary := []struct {
		token string
		build func(id string, l, r Condition) Condition
	}{
		{g.or, func(id string, l, r Condition) Condition { return NewOr(id, l, r) }},
		{g.and, func(id string, l, r Condition) Condition { return NewAnd(id, l, r) }},
		{g.xor, func(id string, l, r Condition) Condition { return NewXor(id, l, r) }},
	}
	for _, op := range binary {
		left, right, found := strings.Cut(expr, op.token)
		if !found {
			continue
		}
		l, err := e.parse(g, left)
		if err != nil {
			return nil, withExpression(err, expr)
		}
		r, err := e.parse(g, right)
		if err != nil {
			return nil, withExpression(err, expr)
		}
		return op.build(expr, l, r), nil
	}

	if operand, ok := strings.CutPrefix(expr, notToken); ok {
		c, err := e.parse(g, operand)
		if err != nil {
			return nil, withExpression(err, expr)
		}
		return NewNot(expr, c), nil
	}

	if c, ok := e.conditions[expr]; ok {
		return c, nil
	}
	return nil, errors.Newf(errors.ErrConditionNotFound, "condition %q not found", expr)
}

func withExpression(err error, expr string) error {
	if ie, ok := err.(*errors.InstkitError); ok {
		if _, set := ie.Details["expression"]; !set {
			return ie.WithDetail("expression", expr)
		}
	}
	return err
}
