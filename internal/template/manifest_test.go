package template

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

const sampleManifest = `{
  "project_name": "My Project",
  "package_name": "{{ cookiecutter.project_name|module_name }}",
  "version": 1,
  "license": ["MIT", "None"],
  "use_docs": true,
  "extra": {"k": "v"},
  "empty": null,
  "__prompts__": {"project_name": "Project name"},
  "__year": "{{ '2026' }}",
  "_copy_without_render": ["*.png"],
  "_post_gen_steps": ["git_init"]
}`

func TestParseManifest_KindsAndOrder(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	var names []string
	kinds := map[string]Kind{}
	for _, v := range m.Variables {
		names = append(names, v.Name)
		kinds[v.Name] = v.Kind
	}

	assert.Equal(t, []string{
		"project_name", "package_name", "version", "license", "use_docs",
		"extra", "empty", "__year", "_copy_without_render", "_post_gen_steps",
	}, names)

	assert.Equal(t, KindString, kinds["project_name"])
	assert.Equal(t, KindString, kinds["version"])
	assert.Equal(t, KindChoice, kinds["license"])
	assert.Equal(t, KindBool, kinds["use_docs"])
	assert.Equal(t, KindMap, kinds["extra"])
	assert.Equal(t, KindString, kinds["empty"])
	assert.Equal(t, KindComputed, kinds["__year"])
	assert.Equal(t, KindPrivate, kinds["_copy_without_render"])

	license, ok := m.Variable("license")
	require.True(t, ok)
	assert.Equal(t, []string{"MIT", "None"}, license.Choices)
	assert.Equal(t, "MIT", license.Default)
	assert.Equal(t, "license", license.Prompt)

	name, _ := m.Variable("project_name")
	assert.Equal(t, "Project name", name.Prompt)

	version, _ := m.Variable("version")
	assert.Equal(t, "1", version.Default)

	assert.Equal(t, []string{"*.png"}, m.CopyWithoutRender)
	assert.Equal(t, []string{"git_init"}, m.PostGenSteps)
	assert.Empty(t, m.PreGenSteps)
}

func TestParseManifest_YAML(t *testing.T) {
	m, err := ParseManifest([]byte("b: one\na: [x, y]\n_pre_gen_steps: [check_module_name]\n"))
	require.NoError(t, err)
	require.Len(t, m.Variables, 3)
	assert.Equal(t, "b", m.Variables[0].Name)
	assert.Equal(t, []string{"check_module_name"}, m.PreGenSteps)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := map[string]string{
		"empty choice":     `{"license": []}`,
		"steps not list":   `{"_post_gen_steps": "git_init"}`,
		"steps not string": `{"_post_gen_steps": [1]}`,
		"prompts not map":  `{"__prompts__": ["x"]}`,
		"not a mapping":    `["a"]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"scaffold.yaml": {Data: []byte("name: x\n")},
	}
	m, err := LoadManifest(fsys)
	require.NoError(t, err)
	assert.Equal(t, "scaffold.yaml", m.File)

	_, err = LoadManifest(fstest.MapFS{})
	assert.Equal(t, errors.EInvalidTemplate, errors.GetCode(err))

	_, err = LoadManifest(fstest.MapFS{"cookiecutter.json": {Data: []byte("{")}})
	assert.Equal(t, errors.EInvalidTemplate, errors.GetCode(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "choice", KindChoice.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
