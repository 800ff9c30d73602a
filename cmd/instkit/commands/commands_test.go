// Test Type: Integration Test
// Description: Tests for the instkit CLI commands over an in-memory filesystem

package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/testutil"
	"github.com/arthur-debert/instkit/pkg/volume"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packsYAML = `packs:
  - id: core
  - id: docs
    condition: want-docs
  - id: extras
    optional: true
`

const conditionsXML = `<conditions>
  <condition id="want-docs" type="variable">
    <name>DOCS</name>
    <value>yes</value>
  </condition>
  <condition id="is-pro" type="variable">
    <name>EDITION</name>
    <value>pro</value>
  </condition>
</conditions>
`

func runCmd(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	testutil.IsolateEnv(t)

	a := &app{fs: fs, interactive: func() bool { return false }}
	cmd := newRootCmd(a)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupProject(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.CreateFileTree(t, fs, "/proj", testutil.FileTree{
		"packs.yaml":        packsYAML,
		"conditions.xml":    conditionsXML,
		"core/bin/tool":     testutil.RandomBytes(200, 1),
		"docs/manual.txt":   testutil.RandomBytes(150, 2),
		"extras/sample.dat": testutil.RandomBytes(80, 3),
	})
	return fs
}

func buildProject(t *testing.T, fs afero.Fs) {
	t.Helper()
	out, err := runCmd(t, fs, "build", "/proj/packs.yaml", "-o", "/dist/app.pak", "--max-size", "64")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Built 3 pack(s)")
}

func TestBuildCommand(t *testing.T) {
	fs := setupProject(t)
	buildProject(t, fs)

	testutil.AssertExists(t, fs, "/dist/app.pak", true)
	testutil.AssertExists(t, fs, "/dist/app.pak.1", true)
	testutil.AssertExists(t, fs, "/dist/app.pak.manifest.yaml", true)
}

func TestBuildCommand_Errors(t *testing.T) {
	fs := setupProject(t)

	_, err := runCmd(t, fs, "build", "/proj/packs.yaml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = runCmd(t, fs, "build", "/proj/packs.yaml", "-o", "/dist/app.pak", "--max-size", "lots")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))

	_, err = runCmd(t, fs, "build", "/proj/missing.yaml", "-o", "/dist/app.pak")
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
}

func TestInstallCommand_GatesPacks(t *testing.T) {
	fs := setupProject(t)
	buildProject(t, fs)

	out, err := runCmd(t, fs, "install", "/dist/app.pak", "-t", "/target",
		"--conditions", "/proj/conditions.xml", "--var", "DOCS=no")
	require.NoError(t, err, out)

	assert.Contains(t, out, "+ core")
	assert.Contains(t, out, "- docs")
	assert.Contains(t, out, "- extras (optional)")
	assert.Contains(t, out, "Installed 1 file(s)")

	testutil.AssertFileContent(t, fs, "/target/bin/tool", testutil.RandomBytes(200, 1))
	testutil.AssertExists(t, fs, "/target/manual.txt", false)
	testutil.AssertExists(t, fs, "/target/sample.dat", false)
}

func TestInstallCommand_VariableEnablesPack(t *testing.T) {
	fs := setupProject(t)
	buildProject(t, fs)

	out, err := runCmd(t, fs, "install", "/dist/app.pak", "-t", "/target",
		"--conditions", "/proj/conditions.xml", "--var", "DOCS=yes")
	require.NoError(t, err, out)

	testutil.AssertFileContent(t, fs, "/target/manual.txt", testutil.RandomBytes(150, 2))
}

func TestInstallCommand_NamedOptionalPack(t *testing.T) {
	fs := setupProject(t)
	buildProject(t, fs)

	out, err := runCmd(t, fs, "install", "/dist/app.pak", "extras", "-t", "/target")
	require.NoError(t, err, out)

	testutil.AssertExists(t, fs, "/target/sample.dat", true)
	testutil.AssertExists(t, fs, "/target/bin/tool", false)

	_, err = runCmd(t, fs, "install", "/dist/app.pak", "nope", "-t", "/target")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackNotFound))
}

func TestInstallCommand_ConfigFileTarget(t *testing.T) {
	fs := setupProject(t)
	buildProject(t, fs)
	require.NoError(t, afero.WriteFile(fs, "/proj/instkit.toml", []byte("[install]\ntarget_dir = \"/opt/app\"\n"), 0644))

	out, err := runCmd(t, fs, "--config", "/proj/instkit.toml", "install", "/dist/app.pak")
	require.NoError(t, err, out)
	testutil.AssertExists(t, fs, "/opt/app/bin/tool", true)
}

func TestInstallCommand_MissingVolume(t *testing.T) {
	fs := setupProject(t)
	buildProject(t, fs)

	data, err := afero.ReadFile(fs, volume.Path("/dist/app.pak", 1))
	require.NoError(t, err)
	require.NoError(t, fs.Remove(volume.Path("/dist/app.pak", 1)))

	_, err = runCmd(t, fs, "install", "/dist/app.pak", "-t", "/target")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrVolumeNotFound))

	require.NoError(t, afero.WriteFile(fs, "/backup/app.pak.1", data, 0644))
	out, err := runCmd(t, fs, "install", "/dist/app.pak", "-t", "/target", "--search-path", "/backup")
	require.NoError(t, err, out)
	testutil.AssertExists(t, fs, "/target/bin/tool", true)
}

func TestEvalCommand(t *testing.T) {
	fs := setupProject(t)

	out, err := runCmd(t, fs, "eval", "--conditions", "/proj/conditions.xml",
		"--var", "EDITION=pro", "--var", "DOCS=no",
		"is-pro", "!is-pro", "is-pro+want-docs", "@is-pro || want-docs")
	require.NoError(t, err, out)

	assert.Contains(t, out, "is-pro: true")
	assert.Contains(t, out, "!is-pro: false")
	assert.Contains(t, out, "is-pro+want-docs: false")
	assert.Contains(t, out, "@is-pro || want-docs: true")
}

func TestEvalCommand_Errors(t *testing.T) {
	fs := setupProject(t)

	out, err := runCmd(t, fs, "eval", "--conditions", "/proj/conditions.xml", "is-pro", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExpressionSyntax))
	assert.Contains(t, out, "is-pro: false")
	assert.Contains(t, out, "nope")

	_, err = runCmd(t, fs, "eval", "--var", "missing-equals", "platform.unix")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = runCmd(t, fs, "eval", "--conditions", "/proj/none.xml", "is-pro")
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
}

func TestConditionsDumpCommand(t *testing.T) {
	fs := setupProject(t)

	out, err := runCmd(t, fs, "conditions", "dump", "--conditions", "/proj/conditions.xml", "-f", "yaml")
	require.NoError(t, err, out)
	assert.Contains(t, out, "want-docs")
	assert.Contains(t, out, "type: variable")

	out, err = runCmd(t, fs, "conditions", "dump", "--conditions", "/proj/conditions.xml")
	require.NoError(t, err, out)
	assert.Contains(t, out, `<condition id="is-pro" type="variable">`)

	_, err = runCmd(t, fs, "conditions", "dump", "-f", "json")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestConditionsTypesCommand(t *testing.T) {
	out, err := runCmd(t, afero.NewMemMapFs(), "conditions", "types")
	require.NoError(t, err, out)

	lines := strings.Fields(out)
	assert.Contains(t, lines, "compareversions")
	assert.Contains(t, lines, "packselection")
	assert.Contains(t, lines, "variable")
	assert.IsIncreasing(t, lines)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, afero.NewMemMapFs(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "instkit dev")
}

func TestRootCommand_NoSubcommand(t *testing.T) {
	_, err := runCmd(t, afero.NewMemMapFs())
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenderError(t *testing.T) {
	err := errors.New(errors.ErrPackNotFound, "pack missing")
	assert.Contains(t, RenderError(err), "Error: [PACK_NOT_FOUND] pack missing")
}
