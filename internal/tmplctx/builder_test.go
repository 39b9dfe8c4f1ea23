package tmplctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/template"
	"github.com/ginjaninja78/scaffold/internal/types"
)

const manifestJSON = `{
  "project_name": "My Project",
  "package_name": "{{ cookiecutter.project_name|module_name }}",
  "license": ["MIT", "Apache-2.0", "None"],
  "use_docs": true,
  "meta": {"topic": "cli"},
  "_copy_without_render": ["*.yml"],
  "__release_tag": "v0.1.0-{{ cookiecutter.package_name }}",
  "__prompts__": {"project_name": "Project name"}
}`

func loadManifest(t *testing.T) *template.Manifest {
	t.Helper()
	m, err := template.ParseManifest([]byte(manifestJSON))
	require.NoError(t, err)
	return m
}

func TestBuild_NoInputUsesRenderedDefaults(t *testing.T) {
	ctx, err := Build(context.Background(), loadManifest(t), Options{NoInput: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"project_name", "package_name", "license", "use_docs", "meta", "_copy_without_render", "__release_tag"}, ctx.Keys())
	assert.Equal(t, "my_project", ctx.String("package_name"))
	assert.Equal(t, "MIT", ctx.String("license"))
	assert.Equal(t, true, ctx.Bool("use_docs"))
	assert.Equal(t, "v0.1.0-my_project", ctx.String("__release_tag"))

	meta, _ := ctx.Get("meta")
	assert.Equal(t, map[string]any{"topic": "cli"}, meta)
	private, _ := ctx.Get("_copy_without_render")
	assert.Equal(t, []any{"*.yml"}, private)
}

func TestBuild_PromptsInOrderWithDerivedDefaults(t *testing.T) {
	prompter := NewFakePrompter().
		Answer("Project name", "Data Tools").
		Answer("license", "Apache-2.0").
		Answer("use_docs", false)

	ctx, err := Build(context.Background(), loadManifest(t), Options{Prompter: prompter})
	require.NoError(t, err)

	assert.Equal(t, []string{"Project name", "package_name", "license", "use_docs"}, prompter.Asked())
	assert.Equal(t, "data_tools", ctx.String("package_name"))
	assert.Equal(t, "Apache-2.0", ctx.String("license"))
	assert.False(t, ctx.Bool("use_docs"))
	assert.Equal(t, "v0.1.0-data_tools", ctx.String("__release_tag"))
}

func TestBuild_Precedence(t *testing.T) {
	extra := types.NewContext()
	extra.Set("project_name", "From Extra")
	extra.Set("use_docs", "no")
	extra.Set("python_version", "3.13")

	prompter := NewFakePrompter()
	ctx, err := Build(context.Background(), loadManifest(t), Options{
		DefaultContext: map[string]string{"project_name": "From Config", "license": "None"},
		Extra:          extra,
		Prompter:       prompter,
	})
	require.NoError(t, err)

	assert.Equal(t, "From Extra", ctx.String("project_name"))
	assert.Equal(t, "from_extra", ctx.String("package_name"))
	assert.Equal(t, "None", ctx.String("license"), "config default moves to the front of the choices")
	assert.Equal(t, false, ctx.Bool("use_docs"))
	assert.Equal(t, "3.13", ctx.String("python_version"), "unknown extra keys are kept")
	assert.NotContains(t, prompter.Asked(), "Project name")
}

func TestBuild_PromptAborted(t *testing.T) {
	prompter := NewFakePrompter().Answer("Project name", ErrAborted)
	_, err := Build(context.Background(), loadManifest(t), Options{Prompter: prompter})
	assert.ErrorIs(t, err, ErrAborted)
}

func TestBuild_BadDefaultTemplate(t *testing.T) {
	m, err := template.ParseManifest([]byte(`{"name": "{% if %}"}`))
	require.NoError(t, err)

	_, err = Build(context.Background(), m, Options{NoInput: true})
	require.Error(t, err)
	assert.Equal(t, errors.ERenderFailed, errors.GetCode(err))
}

func TestBuild_ChoiceOverrides(t *testing.T) {
	extra := types.NewContext()
	extra.Set("license", "apache-2.0")

	ctx, err := Build(context.Background(), loadManifest(t), Options{NoInput: true, Extra: extra})
	require.NoError(t, err)
	assert.Equal(t, "Apache-2.0", ctx.String("license"), "case is corrected to the declared choice")
}

func TestBuild_RejectsUnknownChoice(t *testing.T) {
	extra := types.NewContext()
	extra.Set("license", "GPL-3.0")

	_, err := Build(context.Background(), loadManifest(t), Options{NoInput: true, Extra: extra})
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidChoice, errors.GetCode(err))
	assert.Contains(t, err.Error(), `license="GPL-3.0" from extra context is not one of: MIT, Apache-2.0, None`)

	_, err = Build(context.Background(), loadManifest(t), Options{
		NoInput:        true,
		DefaultContext: map[string]string{"license": "WTFPL"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidChoice, errors.GetCode(err))
	assert.Contains(t, err.Error(), "from default_context")
}

func TestPreferChoice(t *testing.T) {
	choices := []string{"a", "b", "c"}
	assert.Equal(t, []string{"c", "a", "b"}, preferChoice(choices, "c"))
	assert.Equal(t, choices, preferChoice(choices, "a"))
	assert.Equal(t, choices, preferChoice(choices, "z"))
	assert.Equal(t, []string{"a", "b", "c"}, choices, "input is not modified")
}

func TestParseExtraContext(t *testing.T) {
	ctx, err := ParseExtraContext([]string{"project_name=Data Tools", "dependencies=httpx pydantic~=2.0", "project_name=Final"})
	require.NoError(t, err)
	assert.Equal(t, []string{"project_name", "dependencies"}, ctx.Keys())
	assert.Equal(t, "Final", ctx.String("project_name"))
	assert.Equal(t, "httpx pydantic~=2.0", ctx.String("dependencies"))

	_, err = ParseExtraContext([]string{"novalue"})
	assert.Equal(t, errors.EUsage, errors.GetCode(err))

	_, err = ParseExtraContext([]string{"=x"})
	assert.Equal(t, errors.EUsage, errors.GetCode(err))
}
