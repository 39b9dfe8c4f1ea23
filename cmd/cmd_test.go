package cmd

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

// execute runs the root command with isolated configuration directories.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SCAFFOLD_CONFIG", "")
	t.Setenv("SCAFFOLD_REPLAY_DIR", t.TempDir())
	t.Setenv("SCAFFOLD_TEMPLATES_DIR", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		err = usageError(err)
	}
	return out.String(), err
}

func TestSplitTemplateArgs(t *testing.T) {
	ref, pairs := splitTemplateArgs(nil)
	assert.Empty(t, ref)
	assert.Empty(t, pairs)

	ref, pairs = splitTemplateArgs([]string{"gh:acme/tpl", "project_name=Data Tools"})
	assert.Equal(t, "gh:acme/tpl", ref)
	assert.Equal(t, []string{"project_name=Data Tools"}, pairs)

	ref, pairs = splitTemplateArgs([]string{"license=MIT"})
	assert.Empty(t, ref)
	assert.Equal(t, []string{"license=MIT"}, pairs)
}

func TestUsageError(t *testing.T) {
	assert.Equal(t, errors.EUsage, errors.GetCode(usageError(stderrors.New(`unknown command "gen" for "scaffold"`))))
	assert.Equal(t, errors.EUsage, errors.GetCode(usageError(stderrors.New(`required flag(s) "sheet" not set`))))
	assert.Equal(t, errors.Code(""), errors.GetCode(usageError(stderrors.New("disk full"))))

	coded := errors.New(errors.EMissingKey, "missing")
	assert.Same(t, coded, usageError(coded))
}

func TestCheckName(t *testing.T) {
	out, err := execute(t, "check-name", "data_tools", "class", "Café Röster 2")
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidModuleName, errors.GetCode(err))
	assert.Contains(t, err.Error(), "2 of 3 names")

	assert.Contains(t, out, "✓ data_tools")
	assert.Contains(t, out, "✗ class")
	assert.Contains(t, out, "suggestion: class_")
	assert.Contains(t, out, "suggestion: cafe_roster_2")
}

func TestCheckName_NoArgs(t *testing.T) {
	_, err := execute(t, "check-name")
	assert.Equal(t, errors.EUsage, errors.GetCode(err))
	assert.Equal(t, 2, errors.ExitCode(err))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
	assert.Contains(t, out, "Templates:  python")
}

func TestLicenses(t *testing.T) {
	out, err := execute(t, "licenses")
	require.NoError(t, err)
	assert.Contains(t, out, "Licenses of template python:")
	assert.Contains(t, out, "  MIT\n")
}

func TestValidate_Builtin(t *testing.T) {
	out, err := execute(t, "validate", "python")
	require.NoError(t, err)
	assert.Contains(t, out, "Template python is valid")
	assert.Contains(t, out, "Built-in steps:")
	assert.Contains(t, out, "Copy the selected license to LICENSE")
}

func TestFormatSteps(t *testing.T) {
	assert.Empty(t, formatSteps(nil))

	out := formatSteps([]string{"git_init", "launch_rockets"})
	assert.Contains(t, out, "git_init")
	assert.Contains(t, out, "Initialise a git repository")
	assert.Contains(t, out, "launch_rockets")
	assert.Contains(t, out, "unknown step")
}

func TestGenerate_NoInputSkipHooks(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "generate", "python", "--no-input", "--skip-hooks", "-o", dir, "project_name=Data Tools")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated ")

	_, err = os.Stat(filepath.Join(dir, "data_tools", "pyproject.toml"))
	assert.NoError(t, err)
}
