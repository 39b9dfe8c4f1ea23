// Package templates holds the project templates compiled into the binary.
//
// Each top-level directory is one template, laid out exactly like a template
// on disk: a cookiecutter.json manifest, an optional hooks/ directory, and a
// single "{{cookiecutter.<key>}}" directory that becomes the project.
package templates

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed all:python
var builtin embed.FS

// Names lists the embedded templates.
func Names() []string {
	entries, err := fs.ReadDir(builtin, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Open returns the filesystem of an embedded template.
func Open(name string) (fs.FS, bool) {
	info, err := fs.Stat(builtin, name)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	sub, err := fs.Sub(builtin, name)
	if err != nil {
		return nil, false
	}
	return sub, true
}
