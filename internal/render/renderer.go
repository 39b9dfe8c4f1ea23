// =============================================================================
// scaffold - Project Renderer
// =============================================================================
//
// The renderer walks the template's project directory and produces a Plan:
// every directory and file of the generated project with its rendered path
// and content. Planning happens entirely in memory so that a missing key or a
// template error is reported before anything touches the disk.
//
// RENDERING RULES:
//   - Every path segment is rendered. A segment that renders to an empty
//     string drops the entry and everything below it.
//   - Files matching _copy_without_render (doublestar globs, relative to the
//     project directory, matched against the template path and the rendered
//     path) are copied byte-for-byte.
//   - Binary files (a NUL byte in the first 8 KiB) are copied byte-for-byte.
//   - Everything else is rendered.
//   - Rendered paths must stay inside the project directory.
//
// DETERMINISM:
//   Entries are visited in lexical order and rendering has no side effects,
//   so the same template and context always produce the same Plan.
//
// =============================================================================

package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/template"
	"github.com/ginjaninja78/scaffold/internal/types"
	"github.com/ginjaninja78/scaffold/internal/validation"
)

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// =============================================================================
// PLAN STRUCTURES
// =============================================================================

// Entry is one directory or file of the generated project.
type Entry struct {
	// Source is the path inside the template filesystem.
	Source string

	// Path is the rendered path relative to the project directory.
	Path string

	Dir  bool
	Raw  bool // copied without rendering
	Mode fs.FileMode
	Data []byte
}

// Plan is the fully rendered project, not yet written.
type Plan struct {
	// ProjectName is the rendered name of the project directory.
	ProjectName string

	Entries []Entry
}

// Files returns the number of file entries.
func (p *Plan) Files() int {
	n := 0
	for _, e := range p.Entries {
		if !e.Dir {
			n++
		}
	}
	return n
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer plans and writes projects.
type Renderer struct {
	engine *Engine
	logger *zap.Logger
}

// NewRenderer creates a Renderer. A nil logger disables logging.
func NewRenderer(engine *Engine, logger *zap.Logger) *Renderer {
	if engine == nil {
		engine = NewEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{engine: engine, logger: logger}
}

// Engine returns the template engine used by the renderer.
func (r *Renderer) Engine() *Engine {
	return r.engine
}

// Plan renders tpl with ctx.
//
// RETURNS:
//   - The plan, or
//   - E_MISSING_KEY when the template references keys absent from ctx
//     (checked first, across every path, file and hook script), or
//   - E_RENDER_FAILED for template syntax/execution errors.
func (r *Renderer) Plan(tpl *template.Template, ctx *types.Context) (*Plan, error) {
	if err := r.CheckKeys(tpl, ctx); err != nil {
		return nil, err
	}

	projectName, err := r.renderSegment(tpl.ProjectDir, ctx, tpl.ProjectDir)
	if err != nil {
		return nil, err
	}
	if err := checkSegment(projectName, tpl.ProjectDir); err != nil {
		return nil, err
	}

	plan := &Plan{ProjectName: projectName}
	err = fs.WalkDir(tpl.FS, tpl.ProjectDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == tpl.ProjectDir {
			return nil
		}

		rel := strings.TrimPrefix(p, tpl.ProjectDir+"/")
		renderedRel, err := r.renderPath(rel, ctx, p)
		if err != nil {
			return err
		}
		if renderedRel == "" {
			r.logger.Debug("Skipping entry with empty rendered name", zap.String("path", p))
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			plan.Entries = append(plan.Entries, Entry{Source: p, Path: renderedRel, Dir: true, Mode: 0o755})
			return nil
		}

		entry, err := r.planFile(tpl, ctx, p, rel, renderedRel, d)
		if err != nil {
			return err
		}
		plan.Entries = append(plan.Entries, entry)
		return nil
	})
	if err != nil {
		if _, ok := errors.AsScaffoldError(err); ok {
			return nil, err
		}
		return nil, errors.Wrap(errors.ERenderFailed, "failed to walk template", err)
	}

	return plan, nil
}

func (r *Renderer) planFile(tpl *template.Template, ctx *types.Context, src, rel, renderedRel string, d fs.DirEntry) (Entry, error) {
	data, err := fs.ReadFile(tpl.FS, src)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to read %s", src), err)
	}

	mode := fs.FileMode(0o644)
	if info, err := d.Info(); err == nil && info.Mode().Perm()&0o111 != 0 {
		mode = 0o755
	}

	entry := Entry{Source: src, Path: renderedRel, Mode: mode}
	if copyWithoutRender(tpl.Manifest.CopyWithoutRender, rel, renderedRel) || isBinary(data) {
		entry.Raw = true
		entry.Data = data
		return entry, nil
	}

	out, err := r.engine.RenderString(string(data), ctx)
	if err != nil {
		return Entry{}, errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to render %s", src), err)
	}
	entry.Data = []byte(out)
	return entry, nil
}

// renderPath renders every segment of a slash-separated relative path.
// Returns "" when any segment renders empty.
func (r *Renderer) renderPath(rel string, ctx *types.Context, src string) (string, error) {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		out, err := r.renderSegment(seg, ctx, src)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", nil
		}
		if err := checkSegment(out, src); err != nil {
			return "", err
		}
		segments[i] = out
	}
	return path.Join(segments...), nil
}

func (r *Renderer) renderSegment(seg string, ctx *types.Context, src string) (string, error) {
	out, err := r.engine.RenderString(seg, ctx)
	if err != nil {
		return "", errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to render path %s", src), err)
	}
	return out, nil
}

// checkSegment rejects rendered names that would escape the project.
func checkSegment(seg, src string) error {
	if seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
		return errors.New(errors.ERenderFailed,
			fmt.Sprintf("path %s renders to %q, which is not a plain file name", src, seg))
	}
	return nil
}

// CheckKeys reports every context key referenced by the template but absent
// from ctx as E_MISSING_KEY.
func (r *Renderer) CheckKeys(tpl *template.Template, ctx *types.Context) error {
	missing, err := r.MissingKeys(tpl, ctx)
	if err != nil {
		return err
	}
	return validation.MissingKeyError(missing)
}

// MissingKeys maps every context key referenced by the template but absent
// from ctx to the first file referencing it. Project paths, file contents
// (except verbatim copies) and hook scripts are all scanned.
func (r *Renderer) MissingKeys(tpl *template.Template, ctx *types.Context) (map[string]string, error) {
	missing := map[string]string{}
	note := func(text, src string) {
		for _, key := range validation.ReferencedKeys(text) {
			if _, seen := missing[key]; !seen && !ctx.Has(key) {
				missing[key] = src
			}
		}
	}

	err := fs.WalkDir(tpl.FS, tpl.ProjectDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		note(d.Name(), p)
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(p, tpl.ProjectDir+"/")
		if copyWithoutRender(tpl.Manifest.CopyWithoutRender, rel, "") {
			return nil
		}
		data, err := fs.ReadFile(tpl.FS, p)
		if err != nil {
			return err
		}
		if !isBinary(data) {
			note(string(data), p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ERenderFailed, "failed to scan template", err)
	}

	for _, stage := range []string{template.PreGenProject, template.PostGenProject} {
		if name, data, ok := tpl.HookScript(stage); ok {
			note(string(data), path.Join(template.HooksDir, name))
		}
	}

	return missing, nil
}

// =============================================================================
// WRITING
// =============================================================================

// Write materialises plan under root/<ProjectName>. root must exist; the
// project directory must not. Returns the project directory path.
func (r *Renderer) Write(plan *Plan, root string) (string, error) {
	projectDir := filepath.Join(root, plan.ProjectName)
	if err := os.Mkdir(projectDir, 0o755); err != nil {
		return "", errors.Wrap(errors.ERenderFailed, "failed to create project directory", err)
	}

	for _, e := range plan.Entries {
		dest := filepath.Join(projectDir, filepath.FromSlash(e.Path))
		if e.Dir {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return "", errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to create %s", e.Path), err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to create parent of %s", e.Path), err)
		}
		if err := os.WriteFile(dest, e.Data, e.Mode); err != nil {
			return "", errors.Wrap(errors.ERenderFailed, fmt.Sprintf("failed to write %s", e.Path), err)
		}
		r.logger.Debug("Wrote file", zap.String("path", e.Path), zap.Bool("raw", e.Raw))
	}
	return projectDir, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// copyWithoutRender reports whether any pattern matches the template path or
// the rendered path. Invalid patterns never match.
func copyWithoutRender(patterns []string, rel, renderedRel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if renderedRel != "" {
			if ok, _ := doublestar.Match(pattern, renderedRel); ok {
				return true
			}
		}
	}
	return false
}

// isBinary reports whether data looks like a binary file.
func isBinary(data []byte) bool {
	n := len(data)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
