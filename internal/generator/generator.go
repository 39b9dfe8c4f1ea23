// =============================================================================
// scaffold - Generator Module
// =============================================================================
//
// This module contains the core generation logic. It orchestrates one
// generation run, from locating the template to the last post-generation
// step.
//
// GENERATION PIPELINE:
//   1. Locate the template and load its manifest
//   2. Build the context (replay file, or defaults + extra context + prompts)
//   3. Check the keys and values the listed steps rely on
//   4. Run pre-generation steps, then plan the project in memory
//   5. Write the plan into a staging directory and run the pre-gen script
//   6. Move the project into the output directory
//   7. Save the context for --replay
//   8. Run the post-gen script and post-generation steps in the project
//
// FAILURE:
//   Anything failing before step 6 leaves the output directory untouched.
//   Failures after step 6 keep the generated project and report the error.
//
// CONCURRENCY:
//   A Generator holds no per-run state, so batch runs share one instance.
//   Its render engine serialises template parsing internally.
//
// =============================================================================

package generator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/config"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/internal/hooks"
	"github.com/ginjaninja78/scaffold/internal/render"
	"github.com/ginjaninja78/scaffold/internal/replay"
	"github.com/ginjaninja78/scaffold/internal/template"
	"github.com/ginjaninja78/scaffold/internal/tmplctx"
	"github.com/ginjaninja78/scaffold/internal/types"
	"github.com/ginjaninja78/scaffold/internal/validation"
	"github.com/ginjaninja78/scaffold/pkg/utils"
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options describes one generation run.
type Options struct {
	// Template is the template reference ("" for the default template).
	Template string

	// Checkout and Directory refine repository templates.
	Checkout  string
	Directory string

	// OutputDir receives the project directory. Default: ".".
	OutputDir string

	// Extra holds key=value overrides; these are never prompted.
	Extra *types.Context

	NoInput bool

	// Replay reuses the context saved by the last run of the template;
	// ReplayFile reads an explicit file instead.
	Replay     bool
	ReplayFile string

	// Overwrite writes into an existing project directory.
	Overwrite bool

	// SkipHooks disables hook scripts and built-in steps.
	SkipHooks bool

	// SkipSteps disables individual built-in steps.
	SkipSteps []string

	// NoReplaySave leaves the replay directory alone (previews).
	NoReplaySave bool

	// Preloaded skips locating: batch runs resolve a template once and
	// share it between rows.
	Preloaded *template.Template
}

// Result represents the outcome of one generation run.
type Result struct {
	TemplateName string
	OutputDir    string

	// ProjectDir is the generated project. Empty when nothing was committed.
	ProjectDir string

	Context      *types.Context
	FilesWritten int
	StepsRun     []string
	Duration     time.Duration

	// Err is nil when every phase succeeded.
	Err error
}

// Success reports whether the run completed.
func (r Result) Success() bool {
	return r.Err == nil
}

// =============================================================================
// GENERATOR STRUCTURE
// =============================================================================

// Generator runs generations with shared configuration and collaborators.
type Generator struct {
	cfg      *config.Config
	runner   exec.CommandRunner
	prompter tmplctx.Prompter
	renderer *render.Renderer
	logger   *zap.Logger
	out      io.Writer
	now      func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithRunner sets the command runner used for cloning and hooks.
func WithRunner(r exec.CommandRunner) Option { return func(g *Generator) { g.runner = r } }

// WithPrompter sets the prompter used when input is allowed.
func WithPrompter(p tmplctx.Prompter) Option { return func(g *Generator) { g.prompter = p } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(g *Generator) { g.logger = l } }

// WithOutput sets where user-facing notes are printed.
func WithOutput(w io.Writer) Option { return func(g *Generator) { g.out = w } }

// WithClock sets the clock used by license years.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// New creates a Generator.
//
// PARAMETERS:
//   - cfg: the user configuration (nil for defaults).
//   - opts: collaborators; unset ones use the real terminal, os/exec and stdout.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, out: os.Stdout, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if g.cfg == nil {
		g.cfg, _ = config.Parse(nil)
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.runner == nil {
		g.runner = exec.NewRealRunner(g.logger)
	}
	g.renderer = render.NewRenderer(render.NewEngine(), g.logger)
	return g
}

// =============================================================================
// MAIN GENERATION FUNCTION
// =============================================================================

// Run executes the generation pipeline.
func (g *Generator) Run(ctx context.Context, opts Options) Result {
	start := time.Now()
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	result := Result{OutputDir: opts.OutputDir}

	err := g.run(ctx, opts, &result)
	result.Err = err
	result.Duration = time.Since(start)
	if err != nil {
		g.logger.Debug("Generation failed", zap.String("template", result.TemplateName), zap.Error(err))
	}
	return result
}

func (g *Generator) run(ctx context.Context, opts Options, result *Result) error {
	logger := g.logger

	// =========================================================================
	// STEP 1: LOCATE TEMPLATE
	// =========================================================================

	tpl := opts.Preloaded
	if tpl == nil {
		var err error
		if tpl, err = g.Locate(ctx, opts); err != nil {
			return err
		}
	}
	result.TemplateName = tpl.Name
	logger.Info("Using template", zap.String("template", tpl.Name), zap.String("source", tpl.Source))

	if err := hooks.Validate(tpl.Manifest.PreGenSteps, tpl.Manifest.PostGenSteps); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: BUILD CONTEXT
	// =========================================================================

	tctx, err := g.buildContext(ctx, tpl, opts)
	if err != nil {
		return err
	}
	result.Context = tctx
	logger.Debug("Built context", zap.Strings("keys", tctx.Keys()))

	skip := g.skippedSteps(tpl, opts)
	env := &hooks.Env{
		Context: tctx,
		Runner:  g.runner,
		Logger:  logger,
		Out:     g.out,
		Now:     g.now,
	}
	scripts := &hooks.ScriptRunner{Template: tpl, Engine: g.renderer.Engine()}

	// =========================================================================
	// STEP 3: PREFLIGHT
	// =========================================================================
	// Keys read by the listed steps and values they would reject fail here,
	// before any step or command runs.

	if !opts.SkipHooks {
		if err := g.preflight(tpl, tctx, skip); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 4: PRE-GENERATION STEPS AND PLAN
	// =========================================================================

	if !opts.SkipHooks {
		ran, err := hooks.RunSteps(ctx, tpl.Manifest.PreGenSteps, env, skip)
		result.StepsRun = append(result.StepsRun, ran...)
		if err != nil {
			return err
		}
	}

	// Rendering happens in memory: a missing key or a template error is
	// reported before the output directory is touched.

	plan, err := g.renderer.Plan(tpl, tctx)
	if err != nil {
		return err
	}
	logger.Debug("Planned project", zap.String("project", plan.ProjectName), zap.Int("files", plan.Files()))

	fm := utils.NewFileManager(opts.OutputDir, opts.Overwrite)
	if err := fm.CheckDestination(plan.ProjectName); err != nil {
		return err
	}

	// =========================================================================
	// STEP 5: STAGE
	// =========================================================================

	staging, err := fm.NewStaging()
	if err != nil {
		return err
	}
	defer fm.Discard(staging)

	stagedProject, err := g.renderer.Write(plan, staging)
	if err != nil {
		return err
	}

	if !opts.SkipHooks {
		ran, err := scripts.Run(ctx, template.PreGenProject, stagedProject, env)
		if err != nil {
			return err
		}
		if ran {
			result.StepsRun = append(result.StepsRun, template.PreGenProject)
		}
	}

	// =========================================================================
	// STEP 6: COMMIT
	// =========================================================================

	projectDir, err := fm.Commit(stagedProject)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(projectDir); err == nil {
		projectDir = abs
	}
	result.ProjectDir = projectDir
	result.FilesWritten = plan.Files()
	logger.Info("Generated project", zap.String("dir", projectDir), zap.Int("files", result.FilesWritten))

	// =========================================================================
	// STEP 7: SAVE REPLAY
	// =========================================================================

	if !opts.NoReplaySave {
		path, err := replay.Save(g.cfg.ReplayDir, tpl.Name, tctx)
		if err != nil {
			logger.Warn("Could not save replay file", zap.Error(err))
		} else {
			logger.Debug("Saved replay file", zap.String("path", path))
		}
	}

	// =========================================================================
	// STEP 8: POST-GENERATION HOOKS
	// =========================================================================

	if opts.SkipHooks {
		return nil
	}
	env.ProjectDir = projectDir

	ran, err := scripts.Run(ctx, template.PostGenProject, projectDir, env)
	if err != nil {
		return err
	}
	if ran {
		result.StepsRun = append(result.StepsRun, template.PostGenProject)
	}

	steps, err := hooks.RunSteps(ctx, tpl.Manifest.PostGenSteps, env, skip)
	result.StepsRun = append(result.StepsRun, steps...)
	return err
}

// Locate resolves the template named by opts using the configured cache
// and abbreviations.
func (g *Generator) Locate(ctx context.Context, opts Options) (*template.Template, error) {
	return template.Locate(ctx, opts.Template, template.LocateOptions{
		Checkout:      opts.Checkout,
		Directory:     opts.Directory,
		TemplatesDir:  g.cfg.TemplatesDir,
		Abbreviations: g.cfg.Abbreviations,
		Runner:        g.runner,
		Logger:        g.logger,
	})
}

// Config returns the configuration the generator runs with.
func (g *Generator) Config() *config.Config {
	return g.cfg
}

// skippedSteps lists the manifest steps disabled by configuration or by
// the run options.
func (g *Generator) skippedSteps(tpl *template.Template, opts Options) []string {
	var skip []string
	for _, name := range tpl.Manifest.Steps() {
		if g.cfg.SkipsStep(name) || contains(opts.SkipSteps, name) {
			skip = append(skip, name)
		}
	}
	return skip
}

// missingKeys merges the keys referenced by template files with the keys
// read by the active built-in steps and returns those absent from tctx.
func (g *Generator) missingKeys(tpl *template.Template, tctx *types.Context, skip []string) (map[string]string, error) {
	missing, err := g.renderer.MissingKeys(tpl, tctx)
	if err != nil {
		return nil, err
	}
	for key, where := range hooks.RequiredKeys(tpl.Manifest.Steps(), skip) {
		if _, ok := tctx.Get(key); ok {
			continue
		}
		if _, seen := missing[key]; !seen {
			missing[key] = where
		}
	}
	return missing, nil
}

// preflight fails with E_MISSING_KEY when a referenced key is absent, or
// with the owning step's error when a value would be rejected later.
func (g *Generator) preflight(tpl *template.Template, tctx *types.Context, skip []string) error {
	missing, err := g.missingKeys(tpl, tctx, skip)
	if err != nil {
		return err
	}
	if err := validation.MissingKeyError(missing); err != nil {
		return err
	}
	return hooks.Preflight(tpl.Manifest.Steps(), skip, tctx, tpl.Licenses())
}

// buildContext loads a replay file or builds a fresh context.
func (g *Generator) buildContext(ctx context.Context, tpl *template.Template, opts Options) (*types.Context, error) {
	if opts.Replay || opts.ReplayFile != "" {
		var (
			tctx *types.Context
			err  error
		)
		if opts.ReplayFile != "" {
			tctx, err = replay.LoadFile(opts.ReplayFile)
		} else {
			tctx, err = replay.Load(g.cfg.ReplayDir, tpl.Name)
		}
		if err != nil {
			return nil, err
		}
		tctx.Merge(opts.Extra)
		g.logger.Info("Replaying context", zap.Int("keys", tctx.Len()))
		return tctx, nil
	}

	tctx, err := tmplctx.Build(ctx, tpl.Manifest, tmplctx.Options{
		DefaultContext: g.cfg.DefaultContext,
		Extra:          opts.Extra,
		NoInput:        opts.NoInput,
		Prompter:       g.prompter,
		Engine:         g.renderer.Engine(),
		Logger:         g.logger,
	})
	if err != nil {
		return nil, err
	}
	return tctx, nil
}
