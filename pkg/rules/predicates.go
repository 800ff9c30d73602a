package rules

import (
	"os/user"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
)

// VariableEquals is true when a variable is bound to the given value.
// The expected value goes through variable substitution first.
type VariableEquals struct {
	base
	name  string
	value string
}

// NewVariableEquals creates a variable condition
func NewVariableEquals(id, name, value string) *VariableEquals {
	return &VariableEquals{base: base{id: id}, name: name, value: value}
}

func (c *VariableEquals) Type() string { return TypeVariable }

func (c *VariableEquals) Params() map[string]string {
	return map[string]string{ParamName: c.name, ParamValue: c.value}
}

func (c *VariableEquals) IsTrue(ev *Evaluation) bool {
	actual, ok := ev.vars.Get(c.name)
	if !ok {
		return false
	}
	return actual == ev.vars.Substitute(c.value)
}

// Contains is true when a variable's value contains a substring
type Contains struct {
	base
	variable string
	value    string
}

// NewContains creates a contains condition
func NewContains(id, variable, value string) *Contains {
	return &Contains{base: base{id: id}, variable: variable, value: value}
}

func (c *Contains) Type() string { return TypeContains }

func (c *Contains) Params() map[string]string {
	return map[string]string{ParamVariable: c.variable, ParamValue: c.value}
}

func (c *Contains) IsTrue(ev *Evaluation) bool {
	actual, ok := ev.vars.Get(c.variable)
	if !ok {
		return false
	}
	return strings.Contains(actual, ev.vars.Substitute(c.value))
}

// Exists checks that a variable is bound or that a file exists
type Exists struct {
	base
	variable string
	file     string
}

// NewVariableExists creates an exists condition over a variable
func NewVariableExists(id, variable string) *Exists {
	return &Exists{base: base{id: id}, variable: variable}
}

// NewFileExists creates an exists condition over a file path
func NewFileExists(id, file string) *Exists {
	return &Exists{base: base{id: id}, file: file}
}

func (c *Exists) Type() string { return TypeExists }

func (c *Exists) Params() map[string]string {
	if c.file != "" {
		return map[string]string{ParamFile: c.file}
	}
	return map[string]string{ParamVariable: c.variable}
}

func (c *Exists) IsTrue(ev *Evaluation) bool {
	if c.file != "" {
		ok, err := afero.Exists(ev.engine.fs, ev.vars.Substitute(c.file))
		return err == nil && ok
	}
	_, ok := ev.vars.Get(c.variable)
	return ok
}

// Empty is true for an unbound or blank variable, a missing or zero-size
// file, or a missing directory without entries.
type Empty struct {
	base
	variable string
	file     string
	dir      string
}

// NewEmpty creates an empty condition. Exactly one of variable, file and dir
// should be set.
func NewEmpty(id, variable, file, dir string) *Empty {
	return &Empty{base: base{id: id}, variable: variable, file: file, dir: dir}
}

func (c *Empty) Type() string { return TypeEmpty }

func (c *Empty) Params() map[string]string {
	switch {
	case c.file != "":
		return map[string]string{ParamFile: c.file}
	case c.dir != "":
		return map[string]string{ParamDir: c.dir}
	}
	return map[string]string{ParamVariable: c.variable}
}

func (c *Empty) IsTrue(ev *Evaluation) bool {
	fs := ev.engine.fs
	switch {
	case c.file != "":
		info, err := fs.Stat(ev.vars.Substitute(c.file))
		return err != nil || info.Size() == 0
	case c.dir != "":
		empty, err := afero.IsEmpty(fs, ev.vars.Substitute(c.dir))
		return err != nil || empty
	}
	return strings.TrimSpace(ev.vars.Value(c.variable)) == ""
}

// Operator is a comparison operator
type Operator string

const (
	OpEqual        Operator = "eq"
	OpNotEqual     Operator = "neq"
	OpLess         Operator = "lt"
	OpLessEqual    Operator = "lte"
	OpGreater      Operator = "gt"
	OpGreaterEqual Operator = "gte"
)

// ParseOperator accepts the canonical operator names and common aliases
func ParseOperator(s string) (Operator, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "eq", "==", "equal":
		return OpEqual, true
	case "neq", "ne", "!=", "notequal":
		return OpNotEqual, true
	case "lt", "<", "less":
		return OpLess, true
	case "lte", "le", "leq", "<=", "lessequal":
		return OpLessEqual, true
	case "gt", ">", "greater":
		return OpGreater, true
	case "gte", "ge", "geq", ">=", "greaterequal":
		return OpGreaterEqual, true
	}
	return "", false
}

// apply interprets a three-way comparison result
func (o Operator) apply(cmp int) bool {
	switch o {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	}
	return false
}

// CompareMode selects how Compare interprets its operands
type CompareMode int

const (
	// CompareNumerics compares a variable's value with a number
	CompareNumerics CompareMode = iota
	// CompareVersions compares two semantic versions
	CompareVersions
)

// Compare compares two operands numerically or as semantic versions.
// Operands go through variable substitution; for numeric comparisons the
// left operand is the value of a variable.
type Compare struct {
	base
	mode  CompareMode
	left  string
	right string
	op    Operator
}

// NewCompareNumerics compares the value of variable with value
func NewCompareNumerics(id, variable, value string, op Operator) *Compare {
	return &Compare{base: base{id: id}, mode: CompareNumerics, left: variable, right: value, op: op}
}

// NewCompareVersions compares two version operands
func NewCompareVersions(id, operand1, operand2 string, op Operator) *Compare {
	return &Compare{base: base{id: id}, mode: CompareVersions, left: operand1, right: operand2, op: op}
}

func (c *Compare) Type() string {
	if c.mode == CompareVersions {
		return TypeCompareVersions
	}
	return TypeCompareNumerics
}

func (c *Compare) Params() map[string]string {
	if c.mode == CompareVersions {
		return map[string]string{ParamOperand1: c.left, ParamOperand2: c.right, ParamOperator: string(c.op)}
	}
	return map[string]string{ParamVariable: c.left, ParamValue: c.right, ParamOperator: string(c.op)}
}

func (c *Compare) IsTrue(ev *Evaluation) bool {
	if c.mode == CompareVersions {
		return c.compareVersions(ev)
	}
	return c.compareNumerics(ev)
}

func (c *Compare) compareNumerics(ev *Evaluation) bool {
	raw, ok := ev.vars.Get(c.left)
	if !ok {
		return false
	}
	left, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		ev.logger().Debug().Str("condition", c.ID()).Str("value", raw).Msg("Variable is not numeric")
		return false
	}
	right, err := strconv.ParseFloat(strings.TrimSpace(ev.vars.Substitute(c.right)), 64)
	if err != nil {
		ev.logger().Debug().Str("condition", c.ID()).Str("value", c.right).Msg("Comparison value is not numeric")
		return false
	}

	cmp := 0
	if left < right {
		cmp = -1
	} else if left > right {
		cmp = 1
	}
	return c.op.apply(cmp)
}

func (c *Compare) compareVersions(ev *Evaluation) bool {
	left, err := semver.NewVersion(strings.TrimSpace(ev.vars.Substitute(c.left)))
	if err != nil {
		ev.logger().Debug().Err(err).Str("condition", c.ID()).Str("operand", c.left).Msg("Invalid version")
		return false
	}
	right, err := semver.NewVersion(strings.TrimSpace(ev.vars.Substitute(c.right)))
	if err != nil {
		ev.logger().Debug().Err(err).Str("condition", c.ID()).Str("operand", c.right).Msg("Invalid version")
		return false
	}
	return c.op.apply(left.Compare(right))
}

// UserVariable holds the name of the installing user when set
const UserVariable = "USER_NAME"

// UserInput is true when the installing user matches a required user name. The
// user name comes from the USER_NAME variable, else from the OS.
type UserInput struct {
	base
	required string
}

// NewUserInput creates a user condition
func NewUserInput(id, requiredUserName string) *UserInput {
	return &UserInput{base: base{id: id}, required: requiredUserName}
}

func (c *UserInput) Type() string { return TypeUser }

func (c *UserInput) Params() map[string]string {
	return map[string]string{ParamRequiredUser: c.required}
}

func (c *UserInput) IsTrue(ev *Evaluation) bool {
	name := ev.vars.Value(UserVariable)
	if name == "" {
		current, err := user.Current()
		if err != nil {
			ev.logger().Warn().Err(err).Msg("Cannot determine current user")
			return false
		}
		name = current.Username
	}
	return name == c.required
}

// PackSelection is true while the pack with the given id is selected
type PackSelection struct {
	base
	packID string
}

// NewPackSelection creates a pack selection condition
func NewPackSelection(id, packID string) *PackSelection {
	return &PackSelection{base: base{id: id}, packID: packID}
}

func (c *PackSelection) Type() string { return TypePackSelection }

func (c *PackSelection) Params() map[string]string {
	return map[string]string{ParamPackID: c.packID}
}

// PackID returns the pack the condition watches
func (c *PackSelection) PackID() string { return c.packID }

func (c *PackSelection) IsTrue(ev *Evaluation) bool {
	return ev.engine.IsPackSelected(c.packID)
}

// Predicate is host-supplied logic behind a Custom condition
type Predicate func(ev *Evaluation) bool

// Custom delegates to a predicate registered on the engine by name
type Custom struct {
	base
	predicate string
}

// NewCustom creates a condition backed by the named predicate
func NewCustom(id, predicate string) *Custom {
	return &Custom{base: base{id: id}, predicate: predicate}
}

func (c *Custom) Type() string { return TypeCustom }

func (c *Custom) Params() map[string]string {
	return map[string]string{ParamPredicate: c.predicate}
}

func (c *Custom) IsTrue(ev *Evaluation) bool {
	fn, ok := ev.engine.predicates[c.predicate]
	if !ok {
		ev.logger().Warn().
			Str("condition", c.ID()).
			Str("predicate", c.predicate).
			Msg("Predicate not registered, evaluating to false")
		return false
	}
	return fn(ev)
}
