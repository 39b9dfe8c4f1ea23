package template

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/templates"
)

// DefaultTemplate is used when no template reference is given.
const DefaultTemplate = "python"

// BuiltinPrefix forces an embedded template: "builtin:python".
const BuiltinPrefix = "builtin:"

// repoURLPattern recognises clone URLs: https://, ssh://, git+https://, git@host:.
var repoURLPattern = regexp.MustCompile(`^(((git|hg)\+)?(git|ssh|file|https?):(//)?|\w+@[\w.-]+:)`)

// LocateOptions controls how a template reference is resolved.
type LocateOptions struct {
	// Checkout is a branch, tag or commit to check out after cloning.
	Checkout string

	// Directory selects a sub-directory of the repository holding the template.
	Directory string

	// TemplatesDir is where remote templates are cloned.
	TemplatesDir string

	// Abbreviations expand "gh:user/repo" style references.
	Abbreviations map[string]string

	Runner exec.CommandRunner
	Logger *zap.Logger
}

// Locate resolves ref to a loaded template.
//
// RESOLUTION ORDER:
//   1. "" -> DefaultTemplate
//   2. "builtin:<name>" -> embedded template
//   3. abbreviation expansion ("gh:user/repo")
//   4. repository URL -> clone into TemplatesDir
//   5. existing local directory
//   6. bare name of an embedded template
func Locate(ctx context.Context, ref string, opts LocateOptions) (*Template, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if ref == "" {
		ref = DefaultTemplate
	}

	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		return openBuiltin(name, ref, opts.Directory)
	}

	expanded := ExpandAbbreviations(ref, opts.Abbreviations)
	if expanded != ref {
		logger.Debug("Expanded template abbreviation", zap.String("ref", ref), zap.String("url", expanded))
	}

	if IsRepoURL(expanded) {
		dir, err := clone(ctx, expanded, opts, logger)
		if err != nil {
			return nil, err
		}
		return openDir(RepoName(expanded), ref, dir, opts.Directory)
	}

	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, errors.Wrap(errors.ETemplateNotFound, "failed to resolve template path", err)
		}
		return openDir(filepath.Base(abs), ref, abs, opts.Directory)
	}

	if _, ok := templates.Open(ref); ok {
		return openBuiltin(ref, ref, opts.Directory)
	}

	return nil, errors.New(errors.ETemplateNotFound,
		fmt.Sprintf("template %q is not a directory, repository URL or built-in template (built-ins: %s)",
			ref, strings.Join(templates.Names(), ", ")))
}

func openBuiltin(name, source, directory string) (*Template, error) {
	fsys, ok := templates.Open(name)
	if !ok {
		return nil, errors.New(errors.ETemplateNotFound,
			fmt.Sprintf("no built-in template %q (built-ins: %s)", name, strings.Join(templates.Names(), ", ")))
	}
	if directory != "" {
		sub, err := fs.Sub(fsys, filepath.ToSlash(directory))
		if err != nil {
			return nil, errors.Wrap(errors.ETemplateNotFound, "invalid template directory", err)
		}
		fsys = sub
	}
	return Open(name, source, fsys, "")
}

func openDir(name, source, dir, directory string) (*Template, error) {
	if directory != "" {
		dir = filepath.Join(dir, directory)
		name = filepath.Base(dir)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, errors.New(errors.ETemplateNotFound,
				fmt.Sprintf("template directory %q not found", dir))
		}
	}
	return Open(name, source, os.DirFS(dir), dir)
}

// ExpandAbbreviations turns "gh:user/repo" into a URL using the format
// registered for the prefix. "{0}" in the format is replaced by the rest.
func ExpandAbbreviations(ref string, abbreviations map[string]string) string {
	if format, ok := abbreviations[ref]; ok {
		return format
	}
	prefix, rest, found := strings.Cut(ref, ":")
	if !found {
		return ref
	}
	format, ok := abbreviations[prefix]
	if !ok {
		return ref
	}
	return strings.ReplaceAll(format, "{0}", rest)
}

// IsRepoURL reports whether ref should be cloned.
func IsRepoURL(ref string) bool {
	return repoURLPattern.MatchString(ref) || strings.HasSuffix(ref, ".git")
}

// RepoName returns the directory name a clone of url gets.
func RepoName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return "template"
	}
	return trimmed
}

// clone fetches url into TemplatesDir, replacing an earlier clone.
func clone(ctx context.Context, url string, opts LocateOptions, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Runner == nil {
		return "", errors.New(errors.EInternal, "no command runner configured for cloning")
	}
	if opts.TemplatesDir == "" {
		return "", errors.New(errors.EInvalidConfig, "templates_dir is not set")
	}
	if err := os.MkdirAll(opts.TemplatesDir, 0o755); err != nil {
		return "", errors.Wrap(errors.EInternal, "failed to create templates directory", err)
	}

	dir := filepath.Join(opts.TemplatesDir, RepoName(url))
	if _, err := os.Stat(dir); err == nil {
		logger.Info("Removing previous clone", zap.String("dir", dir))
		if err := os.RemoveAll(dir); err != nil {
			return "", errors.Wrap(errors.EInternal, "failed to remove previous clone", err)
		}
	}

	logger.Info("Cloning template", zap.String("url", url), zap.String("dir", dir))
	if err := git(ctx, opts.Runner, "", "clone", url, dir); err != nil {
		return "", err
	}
	if opts.Checkout != "" {
		if err := git(ctx, opts.Runner, dir, "checkout", opts.Checkout); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func git(ctx context.Context, runner exec.CommandRunner, dir string, args ...string) error {
	res, err := runner.Run(ctx, "git", args, exec.RunOpts{Dir: dir})
	if err != nil {
		if exec.IsNotFound(err) {
			return errors.Wrap(errors.EToolNotInstalled, "git is not installed; install with `https://git-scm.com/downloads`", err)
		}
		return errors.Wrap(errors.ECommandFailed, "failed to run git "+args[0], err)
	}
	if res.ExitCode != 0 {
		return errors.NewWithDetails(errors.ETemplateNotFound,
			fmt.Sprintf("git %s exited with status %d", strings.Join(args, " "), res.ExitCode),
			map[string]string{"stderr": strings.TrimSpace(res.Stderr)})
	}
	return nil
}
