// Test Type: Unit Test
// Description: Tests for the rules engine - registration, built-ins and gating queries

package rules_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/platform"
	"github.com/arthur-debert/instkit/pkg/rules"
	"github.com/arthur-debert/instkit/pkg/variables"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var debianAmd64 = platform.Platform{
	Family:       platform.FamilyLinux,
	OS:           "linux",
	Arch:         "amd64",
	Distribution: "debian",
}

func newTestEngine(t *testing.T, opts ...rules.EngineOption) *rules.Engine {
	t.Helper()
	base := []rules.EngineOption{
		rules.WithPlatform(debianAmd64),
		rules.WithFS(afero.NewMemMapFs()),
	}
	return rules.NewEngine(append(base, opts...)...)
}

func addStatic(t *testing.T, e *rules.Engine, id string, value bool) {
	t.Helper()
	require.NoError(t, e.AddCondition(rules.NewStatic(id, value)))
}

func ref(id string) rules.Spec {
	return rules.Spec{Type: rules.TypeRef, Params: map[string]string{rules.ParamRefID: id}}
}

func TestEngine_Builtins(t *testing.T) {
	e := newTestEngine(t)

	assert.True(t, e.IsTrue("platform.linux"))
	assert.True(t, e.IsTrue("platform.unix"))
	assert.True(t, e.IsTrue("platform.linux.debian"))
	assert.True(t, e.IsTrue("platform.arch.amd64"))
	assert.False(t, e.IsTrue("platform.windows"))
	assert.False(t, e.IsTrue("platform.mac"))
	assert.False(t, e.IsTrue("platform.linux.fedora"))

	linux, ok := e.GetCondition("platform.linux").(*rules.Static)
	require.True(t, ok)
	assert.True(t, linux.Value())

	assert.True(t, e.IsBuiltin("platform.windows"))
	assert.False(t, e.IsBuiltin("something.else"))
	assert.Equal(t, debianAmd64, e.Platform())
}

func TestEngine_CreateCondition(t *testing.T) {
	t.Run("generates_missing_id", func(t *testing.T) {
		e := newTestEngine(t)
		c, err := e.CreateCondition(rules.Spec{
			Type:   rules.TypeVariable,
			Params: map[string]string{rules.ParamName: "A", rules.ParamValue: "1"},
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(c.ID(), "variable-"), c.ID())
		assert.Same(t, c, e.GetCondition(c.ID()))
	})

	t.Run("type_names_are_case_insensitive", func(t *testing.T) {
		e := newTestEngine(t)
		c, err := e.CreateCondition(rules.Spec{ID: "x", Type: " Static ", Params: map[string]string{"value": "true"}})
		require.NoError(t, err)
		assert.Equal(t, rules.TypeStatic, c.Type())
	})

	t.Run("unknown_type", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.CreateCondition(rules.Spec{ID: "x", Type: "com.example.Whatever"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConditionType))
	})

	t.Run("duplicate_id", func(t *testing.T) {
		e := newTestEngine(t)
		addStatic(t, e, "a", true)
		_, err := e.CreateCondition(rules.Spec{ID: "a", Type: rules.TypeStatic, Params: map[string]string{"value": "false"}})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
		assert.True(t, e.IsTrue("a"))
	})

	t.Run("builtin_id_is_reserved", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.CreateCondition(rules.Spec{ID: "platform.windows", Type: rules.TypeStatic, Params: map[string]string{"value": "true"}})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
		assert.False(t, e.IsTrue("platform.windows"))
	})

	t.Run("nested_operand_with_id_is_registered", func(t *testing.T) {
		e := newTestEngine(t)
		_, err := e.CreateCondition(rules.Spec{
			ID:   "outer",
			Type: rules.TypeNot,
			Operands: []rules.Spec{
				{ID: "inner", Type: rules.TypeStatic, Params: map[string]string{"value": "false"}},
			},
		})
		require.NoError(t, err)
		assert.True(t, e.IsTrue("outer"))
		assert.False(t, e.IsTrue("inner"))
	})
}

func TestEngine_CreateCondition_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec rules.Spec
	}{
		{"and_without_operands", rules.Spec{Type: rules.TypeAnd}},
		{"or_without_operands", rules.Spec{Type: rules.TypeOr}},
		{"xor_with_one_operand", rules.Spec{Type: rules.TypeXor, Operands: []rules.Spec{ref("a")}}},
		{"not_with_two_operands", rules.Spec{Type: rules.TypeNot, Operands: []rules.Spec{ref("a"), ref("b")}}},
		{"ref_without_refid", rules.Spec{Type: rules.TypeRef}},
		{"static_not_boolean", rules.Spec{Type: rules.TypeStatic, Params: map[string]string{"value": "maybe"}}},
		{"variable_without_name", rules.Spec{Type: rules.TypeVariable, Params: map[string]string{"value": "x"}}},
		{"exists_with_both", rules.Spec{Type: rules.TypeExists, Params: map[string]string{"variable": "A", "file": "/x"}}},
		{"empty_with_nothing", rules.Spec{Type: rules.TypeEmpty}},
		{"compare_bad_operator", rules.Spec{Type: rules.TypeCompareNumerics, Params: map[string]string{
			"variable": "A", "value": "1", "operator": "about",
		}}},
		{"versions_missing_operand", rules.Spec{Type: rules.TypeCompareVersions, Params: map[string]string{"operand1": "1.0"}}},
		{"user_without_name", rules.Spec{Type: rules.TypeUser}},
		{"packselection_without_pack", rules.Spec{Type: rules.TypePackSelection}},
		{"custom_without_predicate", rules.Spec{Type: rules.TypeCustom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			_, err := e.CreateCondition(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConditionInvalid), "got %v", err)
		})
	}
}

func TestEngine_AddCondition(t *testing.T) {
	e := newTestEngine(t)

	c := rules.NewStatic("", true)
	require.NoError(t, e.AddCondition(c))
	assert.True(t, strings.HasPrefix(c.ID(), "static-"))

	err := e.AddCondition(rules.NewStatic(c.ID(), false))
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	err = e.AddCondition(nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	assert.Contains(t, e.Conditions(), c.ID())
}

func TestEngine_PermissiveDefaults(t *testing.T) {
	e := newTestEngine(t)

	for _, id := range []string{"", "unknown", "some.panel", "@x&&y"} {
		assert.True(t, e.CanShowPanel(id), id)
		assert.True(t, e.CanInstallPack(id), id)
		assert.False(t, e.CanInstallPackOptional(id), id)
	}
}

func TestEngine_PanelAndPackGating(t *testing.T) {
	e := newTestEngine(t)
	addStatic(t, e, "yes", true)
	addStatic(t, e, "no", false)

	e.AddPanelCondition("welcome", "yes")
	e.AddPanelCondition("expert", "no")
	e.AddPanelCondition("mixed", "yes+!no")
	e.AddPackCondition("core", "yes", false)
	e.AddPackCondition("extras", "no", false)
	e.AddPackCondition("ghost", "not.registered", false)

	assert.True(t, e.CanShowPanel("welcome"))
	assert.False(t, e.CanShowPanel("expert"))
	assert.True(t, e.CanShowPanel("mixed"))
	assert.True(t, e.CanInstallPack("core"))
	assert.False(t, e.CanInstallPack("extras"))
	assert.False(t, e.CanInstallPack("ghost"), "a mapped but unresolved condition is false")
}

func TestEngine_OptionalPackIndependence(t *testing.T) {
	e := newTestEngine(t)
	addStatic(t, e, "yes", true)
	addStatic(t, e, "no", false)

	e.AddPackCondition("docs", "no", true)
	e.AddPackCondition("samples", "yes", true)
	e.AddPackCondition("core", "yes", false)

	assert.True(t, e.CanInstallPackOptional("docs"))
	assert.False(t, e.CanInstallPack("docs"))
	assert.True(t, e.CanInstallPackOptional("samples"))
	assert.True(t, e.CanInstallPack("samples"))
	assert.False(t, e.CanInstallPackOptional("core"))
}

func TestEngine_PackSelection(t *testing.T) {
	e := newTestEngine(t, rules.WithPacks([]rules.Pack{
		{ID: "docs", Name: "Documentation", Condition: "platform.linux"},
		{ID: "src", Name: "Sources"},
		{Name: "Ungrouped"},
	}))

	assert.True(t, e.IsBuiltin("pack.selected.docs"))
	assert.True(t, e.IsBuiltin("pack.selected.src"))
	assert.False(t, e.IsTrue("pack.selected.docs"))

	watch, ok := e.GetCondition("pack.selected.docs").(*rules.PackSelection)
	require.True(t, ok)
	assert.Equal(t, "docs", watch.PackID())

	e.SelectPack("docs", true)
	assert.True(t, e.IsTrue("pack.selected.docs"))
	assert.True(t, e.IsPackSelected("docs"))

	e.SetSelectedPacks("src")
	assert.False(t, e.IsTrue("pack.selected.docs"))
	assert.True(t, e.IsTrue("pack.selected.src"))

	e.SelectPack("src", false)
	assert.False(t, e.IsPackSelected("src"))

	// pack-level condition strings land in the pack table
	assert.True(t, e.CanInstallPack("docs"))
	assert.True(t, e.CanInstallPack("src"))
}

func TestEngine_CustomPredicates(t *testing.T) {
	e := newTestEngine(t)
	e.RegisterPredicate("has.license", func(ev *rules.Evaluation) bool {
		return ev.Variables().Value("LICENSE_KEY") != ""
	})

	explicit, err := e.CreateCondition(rules.Spec{ID: "licensed", Type: rules.TypeCustom, Params: map[string]string{"predicate": "has.license"}})
	require.NoError(t, err)
	assert.Equal(t, rules.TypeCustom, explicit.Type())

	// a type naming a registered predicate builds a custom condition
	byType, err := e.CreateCondition(rules.Spec{ID: "licensed.short", Type: "has.license"})
	require.NoError(t, err)
	assert.Equal(t, rules.TypeCustom, byType.Type())

	vars := variables.New(map[string]string{"LICENSE_KEY": "abc"})
	assert.True(t, e.IsTrueWith("licensed", vars))
	assert.True(t, e.IsTrueWith("licensed.short", vars))
	assert.False(t, e.IsTrue("licensed"))

	e.RegisterPredicate("bundle.chosen", func(ev *rules.Evaluation) bool {
		return ev.Engine().IsPackSelected("bundle")
	})
	_, err = e.CreateCondition(rules.Spec{ID: "bundled", Type: "bundle.chosen"})
	require.NoError(t, err)
	assert.False(t, e.IsTrue("bundled"))
	e.SelectPack("bundle", true)
	assert.True(t, e.IsTrue("bundled"))

	missing, err := e.CreateCondition(rules.Spec{ID: "unregistered", Type: rules.TypeCustom, Params: map[string]string{"predicate": "nope"}})
	require.NoError(t, err)
	assert.False(t, e.IsConditionTrue(missing))
}

func TestEngine_Tracer(t *testing.T) {
	var records []string
	e := newTestEngine(t, rules.WithTracer(func(id string, result bool) {
		if result {
			records = append(records, id+"=true")
		} else {
			records = append(records, id+"=false")
		}
	}))
	addStatic(t, e, "a", true)
	addStatic(t, e, "b", false)

	e.IsTrue("a")
	e.IsTrue("a+b")
	e.IsTrue("missing")

	assert.Equal(t, []string{"a=true", "a+b=false"}, records)
}

func TestEngine_DefaultAndExplicitVariables(t *testing.T) {
	defaults := variables.New(map[string]string{"MODE": "server"})
	e := newTestEngine(t, rules.WithVariables(defaults))
	_, err := e.CreateCondition(rules.Spec{ID: "server", Type: rules.TypeVariable, Params: map[string]string{"name": "MODE", "value": "server"}})
	require.NoError(t, err)

	assert.Same(t, defaults, e.Variables())
	assert.True(t, e.IsTrue("server"))
	assert.False(t, e.IsTrueWith("server", variables.New(map[string]string{"MODE": "client"})))
	assert.True(t, e.IsTrueWith("server", nil), "nil bindings fall back to the defaults")
	assert.False(t, e.IsConditionTrue(nil))
}

func TestEngine_DeepExpressions(t *testing.T) {
	e := newTestEngine(t)
	addStatic(t, e, "a", true)
	addStatic(t, e, "b", false)

	for _, n := range []int{200, 300, 1000} {
		shorthand := strings.Repeat("a+", n-1) + "a"
		assert.True(t, e.IsTrue(shorthand), "%d shorthand terms", n)

		complexExpr := "@" + strings.Repeat("a && ", n-1) + "a"
		assert.True(t, e.IsTrue(complexExpr), "%d complex terms", n)

		assert.False(t, e.IsTrue(strings.Repeat("a+", n-1)+"b"), "%d terms ending false", n)
	}
}

func TestEngine_UnresolvedReferenceLoop(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddCondition(rules.NewRef("ping", "pong")))
	require.NoError(t, e.AddCondition(rules.NewRef("pong", "ping")))

	// evaluated before ResolveReferences: the loop is cut, not followed
	assert.False(t, e.IsTrue("ping"))
	assert.False(t, e.IsTrue("pong"))
}
