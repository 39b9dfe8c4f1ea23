package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

func TestCheckPrivacy(t *testing.T) {
	for _, p := range GitHubPrivacyOptions {
		assert.NoError(t, CheckPrivacy(p))
	}
	err := CheckPrivacy("secret")
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidPrivacy, errors.GetCode(err))
}

func TestCheckAgent(t *testing.T) {
	got, err := CheckAgent("Claude")
	require.NoError(t, err)
	assert.Equal(t, AgentClaude, got)

	got, err = CheckAgent("")
	require.NoError(t, err)
	assert.Equal(t, AgentNone, got)

	_, err = CheckAgent("copilot")
	assert.Equal(t, errors.EInvalidAgent, errors.GetCode(err))
}

func TestIsNone(t *testing.T) {
	assert.True(t, IsNone(""))
	assert.True(t, IsNone("None"))
	assert.True(t, IsNone(" none "))
	assert.False(t, IsNone("MIT"))
}

func TestResolveLicense(t *testing.T) {
	available := []string{"MIT", "Apache-2.0", "BSD-3-Clause"}

	got, corrected, err := ResolveLicense("MIT", available)
	require.NoError(t, err)
	assert.Equal(t, "MIT", got)
	assert.False(t, corrected)

	got, corrected, err = ResolveLicense("apache-2.0", available)
	require.NoError(t, err)
	assert.Equal(t, "Apache-2.0", got)
	assert.True(t, corrected)

	_, _, err = ResolveLicense("GPL", available)
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidLicense, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Apache-2.0\nBSD-3-Clause\nMIT")
}
