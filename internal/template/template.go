// Package template resolves template references and reads template layouts.
package template

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/types"
)

// Hook stages.
const (
	PreGenProject  = "pre_gen_project"
	PostGenProject = "post_gen_project"
)

// HooksDir is the directory holding hook scripts.
const HooksDir = "hooks"

// Template is a loaded template ready for rendering.
type Template struct {
	// Name identifies the template in replay files ("python", "my-template").
	Name string

	// Source is the reference the template was located from.
	Source string

	// FS is rooted at the template directory (the one holding the manifest).
	FS fs.FS

	// Dir is the template directory on disk; empty for embedded templates.
	Dir string

	Manifest *Manifest

	// ProjectDir is the templated top-level directory, e.g.
	// "{{cookiecutter.package_name}}".
	ProjectDir string
}

// Open loads the manifest and project directory of a template filesystem.
func Open(name, source string, fsys fs.FS, dir string) (*Template, error) {
	manifest, err := LoadManifest(fsys)
	if err != nil {
		return nil, err
	}
	projectDir, err := findProjectDir(fsys)
	if err != nil {
		return nil, err
	}
	return &Template{
		Name:       name,
		Source:     source,
		FS:         fsys,
		Dir:        dir,
		Manifest:   manifest,
		ProjectDir: projectDir,
	}, nil
}

// findProjectDir returns the single top-level directory whose name is a
// template expression over the context namespace.
func findProjectDir(fsys fs.FS) (string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", errors.Wrap(errors.EInvalidTemplate, "failed to read template root", err)
	}

	var candidates []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.Contains(e.Name(), "{{") && strings.Contains(e.Name(), types.Namespace) {
			candidates = append(candidates, e.Name())
		}
	}

	switch len(candidates) {
	case 0:
		return "", errors.New(errors.EInvalidTemplate,
			"template has no project directory (a top-level directory named like \"{{cookiecutter.package_name}}\")")
	case 1:
		return candidates[0], nil
	}
	return "", errors.New(errors.EInvalidTemplate,
		fmt.Sprintf("template has more than one project directory: %s", strings.Join(candidates, ", ")))
}

// HookScript returns the script for a stage ("pre_gen_project"), if any.
// Editor backups ending in "~" are ignored.
func (t *Template) HookScript(stage string) (string, []byte, bool) {
	entries, err := fs.ReadDir(t.FS, HooksDir)
	if err != nil {
		return "", nil, false
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, "~") {
			continue
		}
		if strings.TrimSuffix(name, path.Ext(name)) != stage {
			continue
		}
		data, err := fs.ReadFile(t.FS, path.Join(HooksDir, name))
		if err != nil {
			return "", nil, false
		}
		return name, data, true
	}
	return "", nil, false
}

// LicensesDir is where templates keep license texts, relative to ProjectDir.
const LicensesDir = "data/licenses"

// Licenses lists the license files shipped with the template.
func (t *Template) Licenses() []string {
	entries, err := fs.ReadDir(t.FS, path.Join(t.ProjectDir, LicensesDir))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}
