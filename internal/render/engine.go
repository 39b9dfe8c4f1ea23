// Package render turns a template tree and a context into project files.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"

	"github.com/ginjaninja78/scaffold/internal/types"
)

var setupOnce sync.Once

// setup applies the process-wide pongo2 settings once: generated files are
// source code, not HTML, so autoescaping is off.
func setup() {
	setupOnce.Do(func() {
		pongo2.SetAutoescape(false)
		registerFilters()
	})
}

// Engine renders template strings against a context. It is safe for
// concurrent use.
type Engine struct {
	// mu guards set: pongo2 template sets are not safe for concurrent parsing.
	mu  sync.Mutex
	set *pongo2.TemplateSet
}

// NewEngine returns an engine with the scaffold filters registered.
func NewEngine() *Engine {
	setup()
	// Templates are always rendered from strings; the loader only satisfies
	// the set constructor and resolves nothing.
	return &Engine{set: pongo2.NewSet("scaffold", pongo2.NewFSLoader(fstest.MapFS{}))}
}

// RenderString renders text with ctx exposed under the "cookiecutter" name.
func (e *Engine) RenderString(text string, ctx *types.Context) (string, error) {
	return e.render(text, ctx.Template())
}

func (e *Engine) render(text string, data map[string]any) (string, error) {
	if !isTemplateContent(text) {
		return text, nil
	}

	e.mu.Lock()
	tmpl, err := e.set.FromString(text)
	e.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// isTemplateContent reports whether text contains any pongo2 syntax.
func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%") || strings.Contains(s, "{#")
}
