package hooks

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/internal/types"
)

const pyproject = `[project]
name = "demo"
requires-python = ">= {python_version}"
dependencies = [
    {dependencies}
]

[dependency-groups]
dev = [
    {dev_dependencies}
]

[tool.mypy]
python_version = "{python_version}"
`

// newProject lays out a generated project the way the python template does.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"pyproject.toml":             pyproject,
		".github/workflows/test.yml": "python-version: \"{python_version}\"\n",
		"data/licenses/MIT":          "Copyright (c) {year} {author_name}\n",
		"data/licenses/Apache-2.0":   "Copyright {year} {author_name}\n",
		"data/AGENTS_README.md":      "# Agent guide\n",
		"data/.claude/settings.json": "{}\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newContext(pairs ...string) *types.Context {
	ctx := types.NewContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		ctx.Set(pairs[i], pairs[i+1])
	}
	return ctx
}

func newEnv(t *testing.T, ctx *types.Context) (*Env, *exec.FakeRunner, *bytes.Buffer) {
	t.Helper()
	runner := exec.NewFakeRunner()
	var out bytes.Buffer
	return &Env{
		ProjectDir: newProject(t),
		Context:    ctx,
		Runner:     runner,
		Out:        &out,
		Now:        func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) },
		HomeDir:    "/home/ada",
	}, runner, &out
}

func read(t *testing.T, env *Env, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.ProjectDir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

var notFound = fmt.Errorf("exec: %w", fs.ErrNotExist)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]string{"check_module_name"}, []string{"git_init", "notes"}))

	err := Validate(nil, []string{"git_init", "make_coffee"})
	assert.Equal(t, errors.EInvalidTemplate, errors.GetCode(err))
	assert.Contains(t, err.Error(), "known steps: allow_direnv, check_module_name,")

	err = Validate([]string{"git_init"}, nil)
	assert.Equal(t, errors.EInvalidTemplate, errors.GetCode(err))
}

func TestSteps_Sorted(t *testing.T) {
	steps := Steps()
	require.NotEmpty(t, steps)
	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i-1].Name, steps[i].Name)
	}
	s, ok := Lookup("check_module_name")
	require.True(t, ok)
	assert.Equal(t, StagePre, s.Stage)
}

func TestRequiredKeys(t *testing.T) {
	keys := RequiredKeys([]string{"git_init", "set_license", "notes", "make_coffee", "setup_coding_agent"}, []string{"setup_coding_agent"})
	assert.Equal(t, map[string]string{
		"license":         "step set_license",
		"author_name":     "step set_license",
		"github_username": "step notes",
		"package_name":    "step notes",
	}, keys)

	assert.Empty(t, RequiredKeys([]string{"git_init", "git_hooks"}, nil))
}

func TestPreflight(t *testing.T) {
	steps := []string{"set_license", "setup_coding_agent", "setup_remote"}
	licenses := []string{"MIT", "Apache-2.0"}

	valid := newContext("license", "mit", "coding_agent", "claude", "github_setup", "None")
	assert.NoError(t, Preflight(steps, nil, valid, licenses))

	cases := []struct {
		key, value string
		code       errors.Code
	}{
		{"license", "GPL-3.0", errors.EInvalidLicense},
		{"coding_agent", "copilot", errors.EInvalidAgent},
		{"github_setup", "secret", errors.EInvalidPrivacy},
	}
	for _, tc := range cases {
		c := valid.Clone()
		c.Set(tc.key, tc.value)
		err := Preflight(steps, nil, c, licenses)
		assert.Equal(t, tc.code, errors.GetCode(err), tc.key)
	}

	c := valid.Clone()
	c.Set("coding_agent", "copilot")
	assert.NoError(t, Preflight(steps, []string{"setup_coding_agent"}, c, licenses), "skipped steps are not checked")

	assert.Equal(t, errors.EInvalidPrivacy,
		errors.GetCode(Preflight([]string{"github_setup"}, nil, valid, licenses)), "github_setup needs a visibility")
}

func TestRunSteps_OrderAndSkip(t *testing.T) {
	env, runner, _ := newEnv(t, newContext("package_name", "demo"))

	ran, err := RunSteps(context.Background(), []string{"git_init", "git_hooks", "git_initial_commit"}, env, []string{"git_hooks"})
	require.NoError(t, err)
	assert.Equal(t, []string{"git_init", "git_initial_commit"}, ran)
	assert.Equal(t, []string{"git init", "git add .", "git commit -m Setup"}, runner.Lines())
	for _, c := range runner.Calls() {
		assert.Equal(t, env.ProjectDir, c.Opts.Dir)
	}
}

func TestRunSteps_StopsAtFirstFailure(t *testing.T) {
	env, runner, _ := newEnv(t, newContext())
	runner.On("git init", exec.FakeResponse{Result: exec.CmdResult{ExitCode: 128, Stderr: "fatal: cannot mkdir\n"}})

	ran, err := RunSteps(context.Background(), []string{"git_init", "git_initial_commit"}, env, nil)
	require.Error(t, err)
	assert.Empty(t, ran)
	assert.Equal(t, errors.ECommandFailed, errors.GetCode(err))
	assert.Equal(t, []string{"git init"}, runner.Lines())

	se, _ := errors.AsScaffoldError(err)
	assert.Equal(t, "fatal: cannot mkdir", se.Details["stderr"])
	assert.Equal(t, "128", se.Details["exit_code"])
}

func TestRunSteps_UnknownStep(t *testing.T) {
	env, _, _ := newEnv(t, newContext())
	_, err := RunSteps(context.Background(), []string{"nope"}, env, nil)
	assert.Equal(t, errors.EInvalidTemplate, errors.GetCode(err))
}

func TestCheckModuleNameStep(t *testing.T) {
	env, _, _ := newEnv(t, newContext("package_name", "class"))
	_, err := RunSteps(context.Background(), []string{"check_module_name"}, env, nil)
	assert.Equal(t, errors.EInvalidModuleName, errors.GetCode(err))
	assert.Contains(t, err.Error(), "is a Python keyword")
}

func TestCheckProgram(t *testing.T) {
	runner := exec.NewFakeRunner()
	require.NoError(t, CheckProgram(context.Background(), runner, "direnv", "pixi global install direnv"))

	runner.On("gh", exec.FakeResponse{Err: notFound})
	err := CheckProgram(context.Background(), runner, "gh", "https://cli.github.com/")
	assert.Equal(t, errors.EToolNotInstalled, errors.GetCode(err))
	assert.Contains(t, err.Error(), "gh is not installed; install with `https://cli.github.com/`")

	runner.On("uv", exec.FakeResponse{Result: exec.CmdResult{ExitCode: 2}})
	err = CheckProgram(context.Background(), runner, "uv", "x")
	assert.Equal(t, errors.ECommandFailed, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Issue with uv encountered")
}
