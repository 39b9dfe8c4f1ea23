// =============================================================================
// scaffold - Configuration Module
// =============================================================================
//
// This module loads the user configuration: personal defaults that apply to
// every generated project (author name, email, GitHub user), repository
// abbreviations, and where clones and replay files are kept.
//
// CONFIGURATION FILE:
//   The first of these that is set wins:
//     1. --config flag
//     2. SCAFFOLD_CONFIG environment variable
//     3. $XDG_CONFIG_HOME/scaffold/config.yaml (~/.config/scaffold/config.yaml)
//
//   A missing file at the implicit location (3) is not an error; the defaults
//   are used. A missing file that was asked for explicitly (1, 2) is.
//
// EXAMPLE:
//   default_context:
//     author_name: Ada Lovelace
//     github_username: ada
//   abbreviations:
//     gh: https://github.com/{0}.git
//   skip_steps: [allow_direnv]
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

// =============================================================================
// ENVIRONMENT VARIABLES
// =============================================================================

const (
	EnvConfig       = "SCAFFOLD_CONFIG"
	EnvReplayDir    = "SCAFFOLD_REPLAY_DIR"
	EnvTemplatesDir = "SCAFFOLD_TEMPLATES_DIR"
	EnvLogLevel     = "SCAFFOLD_LOG_LEVEL"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the user configuration.
type Config struct {
	// DefaultContext overrides template defaults for every generation.
	// Values are still offered as prompt defaults unless --no-input is used.
	DefaultContext map[string]string `yaml:"default_context"`

	// Abbreviations map a prefix to a URL format. "{0}" is replaced by the
	// part after the colon: "gh:ada/template" -> "https://github.com/ada/template.git".
	Abbreviations map[string]string `yaml:"abbreviations"`

	// TemplatesDir is where remote templates are cloned.
	// Default: $XDG_CACHE_HOME/scaffold/templates
	TemplatesDir string `yaml:"templates_dir"`

	// ReplayDir is where the context of each generation is saved.
	// Default: $XDG_DATA_HOME/scaffold/replay
	ReplayDir string `yaml:"replay_dir"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// MaxConcurrency bounds how many batch generations run at once.
	// Default: 1 (hooks that open interactive agents need the terminal)
	MaxConcurrency int `yaml:"max_concurrency"`

	// SkipSteps lists built-in hook steps that never run.
	SkipSteps []string `yaml:"skip_steps"`

	// path is the file the configuration was read from ("" for defaults).
	path string
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// DefaultAbbreviations are always available; user entries override them.
var DefaultAbbreviations = map[string]string{
	"gh": "https://github.com/{0}.git",
	"gl": "https://gitlab.com/{0}.git",
	"bb": "https://bitbucket.org/{0}",
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load resolves the configuration path and loads it.
//
// PARAMETERS:
//   - explicitPath: value of the --config flag ("" when not given).
//
// RETURNS:
//   - The configuration with defaults and environment overrides applied.
//   - E_INVALID_CONFIG if an explicitly requested file is missing or broken.
func Load(explicitPath string) (*Config, error) {
	path, explicit := resolvePath(explicitPath)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg := &Config{}
			cfg.applyDefaults()
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, errors.Wrap(errors.EInvalidConfig, fmt.Sprintf("failed to read config file %s", path), err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.EInvalidConfig, fmt.Sprintf("failed to parse config file %s", path), err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes YAML configuration data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolvePath picks the configuration file and reports whether it was
// requested explicitly.
func resolvePath(explicitPath string) (string, bool) {
	if explicitPath != "" {
		return explicitPath, true
	}
	if v := os.Getenv(EnvConfig); v != "" {
		return v, true
	}
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "scaffold", "config.yaml"), false
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	if c.DefaultContext == nil {
		c.DefaultContext = map[string]string{}
	}

	abbreviations := make(map[string]string, len(DefaultAbbreviations)+len(c.Abbreviations))
	for k, v := range DefaultAbbreviations {
		abbreviations[k] = v
	}
	for k, v := range c.Abbreviations {
		abbreviations[k] = v
	}
	c.Abbreviations = abbreviations

	if c.TemplatesDir == "" {
		c.TemplatesDir = filepath.Join(xdgDir("XDG_CACHE_HOME", ".cache"), "scaffold", "templates")
	}
	if c.ReplayDir == "" {
		c.ReplayDir = filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "scaffold", "replay")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 1
	}
}

// applyEnvOverrides lets the environment win over the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvReplayDir); v != "" {
		c.ReplayDir = v
	}
	if v := os.Getenv(EnvTemplatesDir); v != "" {
		c.TemplatesDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	c.TemplatesDir = expandHome(c.TemplatesDir)
	c.ReplayDir = expandHome(c.ReplayDir)
}

// validate checks values that have a closed set of options.
func (c *Config) validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	for prefix, format := range c.Abbreviations {
		if strings.TrimSpace(prefix) == "" || strings.TrimSpace(format) == "" {
			return fmt.Errorf("abbreviation %q has an empty prefix or URL", prefix)
		}
	}
	return nil
}

// SkipsStep reports whether a built-in step is disabled by configuration.
func (c *Config) SkipsStep(name string) bool {
	for _, s := range c.SkipSteps {
		if s == name {
			return true
		}
	}
	return false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// xdgDir returns $envVar, or ~/fallback when it is unset.
func xdgDir(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return filepath.Join(homeDir(), fallback)
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// expandHome replaces a leading "~/" with the home directory.
func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
