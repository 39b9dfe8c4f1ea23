package render

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/types"
)

func newContext(pairs ...string) *types.Context {
	ctx := types.NewContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		ctx.Set(pairs[i], pairs[i+1])
	}
	return ctx
}

func TestRenderString(t *testing.T) {
	e := NewEngine()
	ctx := newContext("project_name", "Data Tools", "author_name", "Ada <ada@example.com>")

	out, err := e.RenderString("# {{ cookiecutter.project_name }} by {{ cookiecutter.author_name }}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Data Tools by Ada <ada@example.com>", out, "output is not HTML-escaped")
}

func TestRenderString_PlainTextUntouched(t *testing.T) {
	e := NewEngine()
	text := "requires-python = \">= {python_version}\"\n"

	out, err := e.RenderString(text, types.NewContext())
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestRenderString_Conditionals(t *testing.T) {
	e := NewEngine()
	tmpl := "{% if cookiecutter.license != \"None\" %}licensed{% else %}unlicensed{% endif %}"

	out, err := e.RenderString(tmpl, newContext("license", "MIT"))
	require.NoError(t, err)
	assert.Equal(t, "licensed", out)

	out, err = e.RenderString(tmpl, newContext("license", "None"))
	require.NoError(t, err)
	assert.Equal(t, "unlicensed", out)
}

func TestRenderString_SyntaxError(t *testing.T) {
	_, err := NewEngine().RenderString("{% if %}", types.NewContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse template")
}

func TestRenderString_Concurrent(t *testing.T) {
	e := NewEngine()
	var wg sync.WaitGroup
	errs := make([]error, 16)
	outs := make([]string, 16)
	for i := range outs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := newContext("name", fmt.Sprintf("Project %d", i))
			outs[i], errs[i] = e.RenderString("{{ cookiecutter.name|module_name }}", ctx)
		}()
	}
	wg.Wait()

	for i := range outs {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("project_%d", i), outs[i])
	}
}

func TestFilters(t *testing.T) {
	e := NewEngine()
	ctx := newContext("name", "  My Data-Tools 2  ")

	cases := []struct {
		expr string
		want string
	}{
		{"{{ cookiecutter.name|module_name }}", "my_data_tools_2"},
		{"{{ cookiecutter.name|kebab }}", "my-data-tools-2"},
		{"{{ cookiecutter.name|snake }}", "my_data_tools_2"},
		{"{{ cookiecutter.name|trim }}", "My Data-Tools 2"},
		{`{{ cookiecutter.name|trim|prepend:"py-" }}`, "py-My Data-Tools 2"},
		{`{{ cookiecutter.name|trim|append:"-cli" }}`, "My Data-Tools 2-cli"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			out, err := e.RenderString(tc.expr, ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestJoinWords(t *testing.T) {
	assert.Equal(t, "", joinWords("  -- ", "_"))
	assert.Equal(t, "a-b-c", joinWords("A.B  c", "-"))
}
