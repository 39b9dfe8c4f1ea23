package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

func TestReferencedKeys(t *testing.T) {
	text := `name = "{{ cookiecutter.package_name }}"
{% if cookiecutter.use_docs == "y" %}docs{% endif %}
version = "{{cookiecutter.version|default:'0.1.0'}}"
literal cookiecutter.not_a_ref outside braces
again {{ cookiecutter.package_name|upper }}`

	assert.Equal(t, []string{"package_name", "version", "use_docs"}, ReferencedKeys(text))
}

func TestReferencedKeys_PlainText(t *testing.T) {
	assert.Nil(t, ReferencedKeys("no template here {python_version}"))
	assert.Nil(t, ReferencedKeys("unterminated {{ cookiecutter.x"))
}

func TestMissingKeyError(t *testing.T) {
	assert.NoError(t, MissingKeyError(nil))

	err := MissingKeyError(map[string]string{
		"author_name": "LICENSE",
		"email":       "pyproject.toml",
	})
	require.Error(t, err)
	assert.Equal(t, errors.EMissingKey, errors.GetCode(err))
	assert.Contains(t, err.Error(), "author_name (LICENSE)\n  email (pyproject.toml)")
}
