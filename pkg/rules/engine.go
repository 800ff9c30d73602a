package rules

import (
	"sort"
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/platform"
	"github.com/arthur-debert/instkit/pkg/variables"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// PackSelectionPrefix starts the id of every pack selection built-in
const PackSelectionPrefix = "pack.selected."

// Engine owns the condition registry and answers gating queries.
//
// An Engine is not safe for concurrent mutation. Build it, load conditions,
// call ResolveReferences, then query.
type Engine struct {
	logger   zerolog.Logger
	vars     *variables.Variables
	platform platform.Platform
	fs       afero.Fs
	tracer   Tracer
	packs    []Pack

	conditions map[string]Condition
	builtins   map[string]Condition

	panelConditions map[string]string
	packConditions  map[string]string
	optionalPacks   map[string]bool
	selectedPacks   map[string]bool

	predicates map[string]Predicate
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithVariables sets the default variable bindings used for evaluation
func WithVariables(vars *variables.Variables) EngineOption {
	return func(e *Engine) { e.vars = vars }
}

// WithPlatform sets the platform the built-in conditions are computed for
func WithPlatform(p platform.Platform) EngineOption {
	return func(e *Engine) { e.platform = p }
}

// WithFS sets the filesystem used by file based conditions
func WithFS(fs afero.Fs) EngineOption {
	return func(e *Engine) { e.fs = fs }
}

// WithPacks registers pack metadata: a selection condition per pack with an
// id, and any pack-level condition in the pack-condition table.
func WithPacks(packs []Pack) EngineOption {
	return func(e *Engine) { e.packs = append(e.packs, packs...) }
}

// WithTracer installs a hook receiving every top-level evaluation result
func WithTracer(t Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine creates an engine with the built-in conditions registered
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:          logging.GetLogger("rules"),
		conditions:      make(map[string]Condition),
		builtins:        make(map[string]Condition),
		panelConditions: make(map[string]string),
		packConditions:  make(map[string]string),
		optionalPacks:   make(map[string]bool),
		selectedPacks:   make(map[string]bool),
		predicates:      make(map[string]Predicate),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.vars == nil {
		e.vars = variables.New(nil)
	}
	if e.platform.Family == "" {
		e.platform = platform.Detect(e.fs)
	}

	e.registerBuiltins()
	return e
}

func (e *Engine) registerBuiltins() {
	for _, b := range platform.Builtins() {
		e.addBuiltin(NewStatic(b.ID, b.Match(e.platform)))
	}
	for _, p := range e.packs {
		if p.ID == "" {
			continue
		}
		e.addBuiltin(NewPackSelection(PackSelectionPrefix+p.ID, p.ID))
		if p.Condition != "" {
			e.packConditions[p.ID] = p.Condition
		}
	}
	e.logger.Debug().
		Str("platform", e.platform.String()).
		Int("builtins", len(e.builtins)).
		Msg("Built-in conditions registered")
}

func (e *Engine) addBuiltin(c Condition) {
	e.builtins[c.ID()] = c
	e.conditions[c.ID()] = c
}

// Platform returns the platform built-ins were computed for
func (e *Engine) Platform() platform.Platform {
	return e.platform
}

// Variables returns the default variable bindings
func (e *Engine) Variables() *variables.Variables {
	return e.vars
}

// IsBuiltin reports whether id is reserved by a built-in condition
func (e *Engine) IsBuiltin(id string) bool {
	_, ok := e.builtins[id]
	return ok
}

// RegisterPredicate makes a host predicate available to custom conditions
func (e *Engine) RegisterPredicate(name string, fn Predicate) {
	e.predicates[name] = fn
}

// CreateCondition instantiates a condition from its spec and registers it.
// A blank id is replaced by a generated one.
func (e *Engine) CreateCondition(s Spec) (Condition, error) {
	if builtin, ok := e.builtins[strings.TrimSpace(s.ID)]; ok {
		return nil, errors.Newf(errors.ErrAlreadyExists, "condition id %q is reserved by a built-in", s.ID).
			WithDetail("type", builtin.Type())
	}
	c, err := e.build(s)
	if err != nil {
		return nil, err
	}
	if err := e.AddCondition(c); err != nil {
		return nil, err
	}
	e.logger.Trace().Str("id", c.ID()).Str("type", c.Type()).Msg("Condition created")
	return c, nil
}

// AddCondition registers a condition under its id
func (e *Engine) AddCondition(c Condition) error {
	if c == nil {
		return errors.New(errors.ErrInvalidInput, "nil condition")
	}
	if c.ID() == "" {
		c.SetID(GenerateID(c.Type()))
	}
	if _, exists := e.conditions[c.ID()]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "condition %q already registered", c.ID())
	}
	e.conditions[c.ID()] = c
	return nil
}

// AddPanelCondition gates a panel by a condition id or expression
func (e *Engine) AddPanelCondition(panelID, conditionID string) {
	e.panelConditions[panelID] = conditionID
}

// AddPackCondition gates a pack by a condition id or expression. An optional
// pack may still be offered when the condition is false.
func (e *Engine) AddPackCondition(packID, conditionID string, optional bool) {
	e.packConditions[packID] = conditionID
	if optional {
		e.optionalPacks[packID] = true
	}
}

// Conditions returns the registered condition ids, sorted
func (e *Engine) Conditions() []string {
	ids := make([]string, 0, len(e.conditions))
	for id := range e.conditions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsConditionTrue evaluates c against the default variables
func (e *Engine) IsConditionTrue(c Condition) bool {
	return e.IsConditionTrueWith(c, e.vars)
}

// IsConditionTrueWith evaluates c against vars
func (e *Engine) IsConditionTrueWith(c Condition, vars *variables.Variables) bool {
	if c == nil {
		return false
	}
	if vars == nil {
		vars = e.vars
	}
	ev := &Evaluation{engine: e, vars: vars}
	result := ev.Eval(c)

	e.logger.Trace().Str("condition", c.ID()).Bool("result", result).Msg("Condition evaluated")
	if e.tracer != nil {
		e.tracer(c.ID(), result)
	}
	return result
}

// IsTrue evaluates the condition or expression id against the default variables
func (e *Engine) IsTrue(id string) bool {
	return e.IsTrueWith(id, e.vars)
}

// IsTrueWith evaluates the condition or expression id against vars.
// An id that does not resolve is false.
func (e *Engine) IsTrueWith(id string, vars *variables.Variables) bool {
	c := e.GetCondition(id)
	if c == nil {
		return false
	}
	return e.IsConditionTrueWith(c, vars)
}

// CanShowPanel is true when the panel has no condition or its condition holds
func (e *Engine) CanShowPanel(panelID string) bool {
	conditionID, ok := e.panelConditions[panelID]
	if !ok {
		return true
	}
	return e.IsTrue(conditionID)
}

// CanInstallPack is true when the pack has no condition or its condition holds
func (e *Engine) CanInstallPack(packID string) bool {
	conditionID, ok := e.packConditions[packID]
	if !ok {
		return true
	}
	return e.IsTrue(conditionID)
}

// CanInstallPackOptional reports whether the pack was registered as
// optional, whatever its condition evaluates to.
func (e *Engine) CanInstallPackOptional(packID string) bool {
	return e.optionalPacks[packID]
}

// SelectPack marks a pack as selected or deselected
func (e *Engine) SelectPack(packID string, selected bool) {
	if selected {
		e.selectedPacks[packID] = true
		return
	}
	delete(e.selectedPacks, packID)
}

// SetSelectedPacks replaces the selection with the given pack ids
func (e *Engine) SetSelectedPacks(packIDs ...string) {
	e.selectedPacks = make(map[string]bool, len(packIDs))
	for _, id := range packIDs {
		e.selectedPacks[id] = true
	}
}

// IsPackSelected reports whether a pack is currently selected
func (e *Engine) IsPackSelected(packID string) bool {
	return e.selectedPacks[packID]
}
