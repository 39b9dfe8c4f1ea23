package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/internal/validation"
)

// MinimumPythonMinor is the oldest Python 3 minor version that does not
// trigger an upgrade warning.
const MinimumPythonMinor = 12

// pythonVersionFiles receive the detected version.
var pythonVersionFiles = []string{
	".github/workflows/test.yml",
	"pyproject.toml",
}

var pythonVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

func checkModuleName(_ context.Context, env *Env) error {
	return validation.CheckModuleName(env.Context.String("package_name"))
}

// setPythonVersion fills "{python_version}" with the major.minor version of
// the context's python_version or, failing that, of python3 on PATH.
func setPythonVersion(ctx context.Context, env *Env) error {
	raw := env.Context.String("python_version")
	if raw == "" {
		res, err := env.runOpts(ctx, exec.RunOpts{Dir: env.ProjectDir}, "python3", "--version")
		if err != nil {
			return err
		}
		raw = res.Stdout + res.Stderr
	}

	version, minor, err := ParsePythonVersion(raw)
	if err != nil {
		return err
	}
	env.Logger.Info("Setting python version", zap.String("python_version", version))
	if minor < MinimumPythonMinor {
		env.Logger.Warn("Python version should be upgraded to the latest available release",
			zap.String("python_version", version))
	}

	for _, name := range pythonVersionFiles {
		if err := replaceInFile(filepath.Join(env.ProjectDir, name), map[string]string{"{python_version}": version}); err != nil {
			if os.IsNotExist(err) {
				env.Logger.Debug("No file to set python version in", zap.String("file", name))
				continue
			}
			return err
		}
	}
	return nil
}

// ParsePythonVersion extracts "major.minor" from text such as
// "Python 3.12.4" or "3.13".
func ParsePythonVersion(text string) (string, int, error) {
	m := pythonVersionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", 0, errors.New(errors.ECommandFailed,
			fmt.Sprintf("cannot read a python version from %q", strings.TrimSpace(text)))
	}
	minor, _ := strconv.Atoi(m[2])
	return m[1] + "." + m[2], minor, nil
}

// ProcessDependencies turns a space separated list into pyproject array
// lines: "pytest ruff~=0.5" -> "    \"pytest\",\n    \"ruff~=0.5\",\n".
func ProcessDependencies(deps string) string {
	var b strings.Builder
	for _, dep := range strings.Fields(deps) {
		fmt.Fprintf(&b, "    \"%s\",\n", dep)
	}
	return b.String()
}

func updateDependencies(ctx context.Context, env *Env) error {
	err := replaceInFile(filepath.Join(env.ProjectDir, "pyproject.toml"), map[string]string{
		"    {dependencies}\n":     ProcessDependencies(env.Context.String("dependencies")),
		"    {dev_dependencies}\n": ProcessDependencies(env.Context.String("dev_dependencies")),
	})
	if err != nil {
		return errors.Wrap(errors.EHookFailed, "failed to update dependencies in pyproject.toml", err)
	}
	return env.run(ctx, "uv", "sync")
}

// replaceInFile applies every old -> new replacement to the file at path.
func replaceInFile(path string, replacements map[string]string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	contents := string(data)
	for old, repl := range replacements {
		contents = strings.ReplaceAll(contents, old, repl)
	}
	return os.WriteFile(path, []byte(contents), info.Mode().Perm())
}
