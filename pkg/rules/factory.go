package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/google/uuid"
)

// Condition type names
const (
	TypeAnd             = "and"
	TypeOr              = "or"
	TypeXor             = "xor"
	TypeNot             = "not"
	TypeRef             = "ref"
	TypeStatic          = "static"
	TypeCompareNumerics = "comparenumerics"
	TypeCompareVersions = "compareversions"
	TypeExists          = "exists"
	TypeEmpty           = "empty"
	TypeVariable        = "variable"
	TypeContains        = "contains"
	TypeUser            = "user"
	TypePackSelection   = "packselection"
	TypeCustom          = "custom"
)

// Parameter names
const (
	ParamRefID        = "refid"
	ParamValue        = "value"
	ParamName         = "name"
	ParamVariable     = "variable"
	ParamFile         = "file"
	ParamDir          = "dir"
	ParamOperator     = "operator"
	ParamOperand1     = "operand1"
	ParamOperand2     = "operand2"
	ParamRequiredUser = "requiredusername"
	ParamPackID       = "packid"
	ParamPredicate    = "predicate"
)

// factory builds a condition from its spec and already built operands.
// The id is assigned by the caller.
type factory func(s Spec, operands []Condition) (Condition, error)

var factories = map[string]factory{
	TypeAnd: func(s Spec, ops []Condition) (Condition, error) {
		if err := operandCount(s, ops, 1, -1); err != nil {
			return nil, err
		}
		return NewAnd("", ops...), nil
	},
	TypeOr: func(s Spec, ops []Condition) (Condition, error) {
		if err := operandCount(s, ops, 1, -1); err != nil {
			return nil, err
		}
		return NewOr("", ops...), nil
	},
	TypeXor: func(s Spec, ops []Condition) (Condition, error) {
		if err := operandCount(s, ops, 2, 2); err != nil {
			return nil, err
		}
		return NewXor("", ops[0], ops[1]), nil
	},
	TypeNot: func(s Spec, ops []Condition) (Condition, error) {
		if err := operandCount(s, ops, 1, 1); err != nil {
			return nil, err
		}
		return NewNot("", ops[0]), nil
	},
	TypeRef: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamRefID); err != nil {
			return nil, err
		}
		return NewRef("", s.Param(ParamRefID)), nil
	},
	TypeStatic: func(s Spec, _ []Condition) (Condition, error) {
		value, err := strconv.ParseBool(strings.TrimSpace(s.Param(ParamValue)))
		if err != nil {
			return nil, invalid(s, "value must be a boolean").WithDetail("value", s.Param(ParamValue))
		}
		return NewStatic("", value), nil
	},
	TypeCompareNumerics: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamVariable, ParamValue); err != nil {
			return nil, err
		}
		op, err := operator(s)
		if err != nil {
			return nil, err
		}
		return NewCompareNumerics("", s.Param(ParamVariable), s.Param(ParamValue), op), nil
	},
	TypeCompareVersions: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamOperand1, ParamOperand2); err != nil {
			return nil, err
		}
		op, err := operator(s)
		if err != nil {
			return nil, err
		}
		return NewCompareVersions("", s.Param(ParamOperand1), s.Param(ParamOperand2), op), nil
	},
	TypeExists: func(s Spec, _ []Condition) (Condition, error) {
		variable, file := s.Param(ParamVariable), s.Param(ParamFile)
		switch {
		case variable != "" && file == "":
			return NewVariableExists("", variable), nil
		case file != "" && variable == "":
			return NewFileExists("", file), nil
		}
		return nil, invalid(s, "exactly one of variable or file is required")
	},
	TypeEmpty: func(s Spec, _ []Condition) (Condition, error) {
		set := 0
		for _, name := range []string{ParamVariable, ParamFile, ParamDir} {
			if s.Param(name) != "" {
				set++
			}
		}
		if set != 1 {
			return nil, invalid(s, "exactly one of variable, file or dir is required")
		}
		return NewEmpty("", s.Param(ParamVariable), s.Param(ParamFile), s.Param(ParamDir)), nil
	},
	TypeVariable: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamName); err != nil {
			return nil, err
		}
		return NewVariableEquals("", s.Param(ParamName), s.Param(ParamValue)), nil
	},
	TypeContains: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamVariable, ParamValue); err != nil {
			return nil, err
		}
		return NewContains("", s.Param(ParamVariable), s.Param(ParamValue)), nil
	},
	TypeUser: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamRequiredUser); err != nil {
			return nil, err
		}
		return NewUserInput("", s.Param(ParamRequiredUser)), nil
	},
	TypePackSelection: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamPackID); err != nil {
			return nil, err
		}
		return NewPackSelection("", s.Param(ParamPackID)), nil
	},
	TypeCustom: func(s Spec, _ []Condition) (Condition, error) {
		if err := required(s, ParamPredicate); err != nil {
			return nil, err
		}
		return NewCustom("", s.Param(ParamPredicate)), nil
	},
}

// Types returns the known condition type names, sorted
func Types() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateID returns a process-unique id for a condition of the given type
func GenerateID(typeName string) string {
	return typeName + "-" + uuid.NewString()
}

// build instantiates a condition and its operands without registering the
// condition itself. Operands carrying an explicit id are registered.
func (e *Engine) build(s Spec) (Condition, error) {
	typeName := strings.ToLower(strings.TrimSpace(s.Type))
	f, ok := factories[typeName]
	if !ok {
		// A type naming a registered predicate is shorthand for a custom condition
		if _, known := e.predicates[s.Type]; !known {
			return nil, errors.Newf(errors.ErrConditionType, "unknown condition type %q", s.Type).
				WithDetail("id", s.ID)
		}
		typeName = TypeCustom
		f = factories[TypeCustom]
		s.Params = map[string]string{ParamPredicate: s.Type}
	}

	operands := make([]Condition, 0, len(s.Operands))
	for _, opSpec := range s.Operands {
		op, err := e.buildOperand(opSpec)
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)
	}

	c, err := f(s, operands)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(s.ID)
	if id == "" {
		id = GenerateID(typeName)
	}
	c.SetID(id)
	return c, nil
}

func (e *Engine) buildOperand(s Spec) (Condition, error) {
	id := strings.TrimSpace(s.ID)
	if builtin, ok := e.builtins[id]; ok {
		return builtin, nil
	}
	c, err := e.build(s)
	if err != nil {
		return nil, err
	}
	if id != "" {
		if err := e.AddCondition(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func operandCount(s Spec, ops []Condition, lo, hi int) error {
	if len(ops) < lo || (hi >= 0 && len(ops) > hi) {
		return invalid(s, "wrong number of operands").WithDetail("operands", len(ops))
	}
	return nil
}

func required(s Spec, names ...string) error {
	for _, name := range names {
		if strings.TrimSpace(s.Param(name)) == "" {
			return invalid(s, "missing parameter "+name)
		}
	}
	return nil
}

func operator(s Spec) (Operator, error) {
	op, ok := ParseOperator(s.Param(ParamOperator))
	if !ok {
		return "", invalid(s, "unknown operator").WithDetail("operator", s.Param(ParamOperator))
	}
	return op, nil
}

func invalid(s Spec, msg string) *errors.InstkitError {
	return errors.Newf(errors.ErrConditionInvalid, "invalid %s condition: %s", s.Type, msg).
		WithDetail("id", s.ID)
}
