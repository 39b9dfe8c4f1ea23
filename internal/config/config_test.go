package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvReplayDir, "")
	t.Setenv(EnvTemplatesDir, "")
	t.Setenv(EnvLogLevel, "")
	return home
}

func TestLoad_MissingImplicitFileUsesDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Path())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, filepath.Join(home, ".cache", "scaffold", "templates"), cfg.TemplatesDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "scaffold", "replay"), cfg.ReplayDir)
	assert.Equal(t, "https://github.com/{0}.git", cfg.Abbreviations["gh"])
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidConfig, errors.GetCode(err))
}

func TestLoad_ReadsFileAndEnvOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_context:
  author_name: Ada
abbreviations:
  gh: git@github.com:{0}.git
  corp: https://git.corp/{0}.git
replay_dir: /tmp/from-file
max_concurrency: 3
skip_steps: [allow_direnv]
`), 0o644))

	t.Setenv(EnvConfig, path)
	t.Setenv(EnvReplayDir, "/tmp/from-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "Ada", cfg.DefaultContext["author_name"])
	assert.Equal(t, "git@github.com:{0}.git", cfg.Abbreviations["gh"])
	assert.Equal(t, "https://git.corp/{0}.git", cfg.Abbreviations["corp"])
	assert.Equal(t, "https://gitlab.com/{0}.git", cfg.Abbreviations["gl"])
	assert.Equal(t, "/tmp/from-env", cfg.ReplayDir)
	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.True(t, cfg.SkipsStep("allow_direnv"))
	assert.False(t, cfg.SkipsStep("git_init"))
}

func TestParse_InvalidLogLevel(t *testing.T) {
	isolate(t)
	_, err := Parse([]byte("log_level: chatty\n"))
	assert.Error(t, err)
}

func TestParse_ExpandsHome(t *testing.T) {
	home := isolate(t)
	cfg, err := Parse([]byte("templates_dir: ~/templates\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "templates"), cfg.TemplatesDir)
}
