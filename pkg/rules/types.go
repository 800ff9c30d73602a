package rules

// Spec is the serializable form of a condition: its id, type name, the
// type-specific parameters and, for composites, the operand specs.
type Spec struct {
	ID       string            `yaml:"id" toml:"id"`
	Type     string            `yaml:"type" toml:"type"`
	Params   map[string]string `yaml:"params,omitempty" toml:"params,omitempty"`
	Operands []Spec            `yaml:"operands,omitempty" toml:"operands,omitempty"`
}

// Param returns a parameter value, or "" when absent
func (s Spec) Param(name string) string {
	return s.Params[name]
}

// PanelCondition maps a panel to the condition gating its display
type PanelCondition struct {
	PanelID     string `yaml:"panelid" toml:"panelid"`
	ConditionID string `yaml:"conditionid" toml:"conditionid"`
}

// PackCondition maps a pack to the condition gating its installation.
// An optional pack may still be offered when its condition is false.
type PackCondition struct {
	PackID      string `yaml:"packid" toml:"packid"`
	ConditionID string `yaml:"conditionid" toml:"conditionid"`
	Optional    bool   `yaml:"optional,omitempty" toml:"optional,omitempty"`
}

// Pack is the install-time metadata the engine needs about a pack
type Pack struct {
	// ID is the grouping id; packs without one get no selection condition
	ID string

	// Name is the display name
	Name string

	// Condition is an optional condition id or expression gating the pack
	Condition string
}

// Document is a complete condition set as written by WriteConditions
type Document struct {
	Conditions      []Spec           `yaml:"conditions" toml:"conditions"`
	PanelConditions []PanelCondition `yaml:"panelconditions,omitempty" toml:"panelconditions,omitempty"`
	PackConditions  []PackCondition  `yaml:"packconditions,omitempty" toml:"packconditions,omitempty"`
}

// Tracer receives one record per top-level evaluation
type Tracer func(id string, result bool)
