// =============================================================================
// scaffold - Generation Hooks
// =============================================================================
//
// Hooks run around rendering. There are two kinds:
//
//   BUILT-IN STEPS   Named Go functions listed by the manifest keys
//                    _pre_gen_steps and _post_gen_steps. They derive values
//                    and bootstrap the generated project (git, uv, direnv,
//                    licenses, coding agents, remotes).
//
//   SCRIPT HOOKS     hooks/pre_gen_project.* and hooks/post_gen_project.* in
//                    the template, rendered with the context and executed.
//
// Steps run sequentially in the order the manifest lists them. The first
// failing step stops the run; nothing already done is rolled back.
//
// =============================================================================

package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/internal/types"
)

// Stage says when a step may run.
type Stage string

const (
	// StagePre steps run before anything is rendered and only see the context.
	StagePre Stage = "pre"

	// StagePost steps run inside the committed project directory.
	StagePost Stage = "post"
)

// =============================================================================
// STEP ENVIRONMENT
// =============================================================================

// Env is everything a step can touch.
type Env struct {
	// ProjectDir is the generated project; empty for pre-generation steps.
	ProjectDir string

	Context *types.Context
	Runner  exec.CommandRunner
	Logger  *zap.Logger

	// Out receives user-facing notes.
	Out io.Writer

	// Now stamps license years.
	Now func() time.Time

	// HomeDir locates per-user tools such as ~/.claude/local/claude.
	HomeDir string
}

// withDefaults fills unset fields.
func (e *Env) withDefaults() *Env {
	out := *e
	if out.Context == nil {
		out.Context = types.NewContext()
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.Runner == nil {
		out.Runner = exec.NewRealRunner(out.Logger)
	}
	if out.Out == nil {
		out.Out = os.Stdout
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	if out.HomeDir == "" {
		out.HomeDir, _ = os.UserHomeDir()
	}
	return &out
}

// =============================================================================
// STEP REGISTRY
// =============================================================================

// StepFunc performs one step.
type StepFunc func(ctx context.Context, env *Env) error

// CheckFunc validates the context values a step will use, before anything
// is written. licenses lists the license files the template ships.
type CheckFunc func(c *types.Context, licenses []string) error

// Step is a named built-in hook.
type Step struct {
	Name        string
	Stage       Stage
	Description string
	Run         StepFunc

	// Requires lists the context keys the step reads.
	Requires []string

	// Check, when set, rejects values the step would fail on.
	Check CheckFunc
}

var registry = map[string]Step{}

func register(s Step) {
	registry[s.Name] = s
}

func init() {
	register(Step{Name: "check_module_name", Stage: StagePre, Run: checkModuleName,
		Description: "Check that package_name is a valid module name",
		Requires:    []string{"package_name"}})
	register(Step{Name: "set_python_version", Stage: StagePost, Run: setPythonVersion,
		Description: "Write the Python version into pyproject.toml and CI"})
	register(Step{Name: "set_license", Stage: StagePost, Run: setLicense, Check: checkLicense,
		Description: "Copy the selected license to LICENSE",
		Requires:    []string{"license", "author_name"}})
	register(Step{Name: "git_init", Stage: StagePost, Run: gitInit,
		Description: "Initialise a git repository"})
	register(Step{Name: "update_dependencies", Stage: StagePost, Run: updateDependencies,
		Description: "Write dependencies into pyproject.toml and run uv sync",
		Requires:    []string{"dependencies", "dev_dependencies"}})
	register(Step{Name: "allow_direnv", Stage: StagePost, Run: allowDirenv,
		Description: "Allow the project's .envrc"})
	register(Step{Name: "git_hooks", Stage: StagePost, Run: gitHooks,
		Description: "Install git hooks with prek"})
	register(Step{Name: "setup_coding_agent", Stage: StagePost, Run: setupCodingAgent, Check: checkAgent,
		Description: "Set up the selected coding agent",
		Requires:    []string{"coding_agent"}})
	register(Step{Name: "remove_data_dir", Stage: StagePost, Run: removeDataDir,
		Description: "Remove the template's data directory"})
	register(Step{Name: "git_initial_commit", Stage: StagePost, Run: gitInitialCommit,
		Description: "Make the initial commit"})
	register(Step{Name: "setup_remote", Stage: StagePost, Run: setupRemote, Check: checkRemote,
		Description: "Create the GitHub repository or add the origin remote",
		Requires:    []string{"github_setup", "project_url", "package_name"}})
	register(Step{Name: "github_setup", Stage: StagePost, Run: githubSetupStep, Check: checkGitHubSetup,
		Description: "Create the GitHub repository with gh",
		Requires:    []string{"github_setup", "package_name"}})
	register(Step{Name: "notes", Stage: StagePost, Run: notes,
		Description: "Print follow-up notes",
		Requires:    []string{"github_username", "package_name"}})
}

// Lookup returns the step registered under name.
func Lookup(name string) (Step, bool) {
	s, ok := registry[name]
	return s, ok
}

// Steps lists every registered step, sorted by name.
func Steps() []Step {
	out := make([]Step, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Validate checks that every step name is known and listed in a stage it
// can run in.
func Validate(pre, post []string) error {
	check := func(names []string, stage Stage) error {
		for _, name := range names {
			s, ok := registry[name]
			if !ok {
				return errors.New(errors.EInvalidTemplate,
					fmt.Sprintf("unknown %s-generation step %q; known steps: %s", stage, name, strings.Join(stepNames(), ", ")))
			}
			if stage == StagePre && s.Stage != StagePre {
				return errors.New(errors.EInvalidTemplate,
					fmt.Sprintf("step %q needs the generated project and cannot run before generation", name))
			}
		}
		return nil
	}
	if err := check(pre, StagePre); err != nil {
		return err
	}
	return check(post, StagePost)
}

func stepNames() []string {
	steps := Steps()
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

// RequiredKeys maps every context key read by the named steps to the first
// step that reads it. Skipped and unknown steps are ignored.
func RequiredKeys(names []string, skip []string) map[string]string {
	out := map[string]string{}
	for _, name := range active(names, skip) {
		for _, key := range registry[name].Requires {
			if _, seen := out[key]; !seen {
				out[key] = "step " + name
			}
		}
	}
	return out
}

// Preflight runs the value checks of the named steps against c, so a value
// a step would reject fails the run before any file is written.
func Preflight(names []string, skip []string, c *types.Context, licenses []string) error {
	for _, name := range active(names, skip) {
		if check := registry[name].Check; check != nil {
			if err := check(c, licenses); err != nil {
				return err
			}
		}
	}
	return nil
}

// active returns the known, not skipped step names in order.
func active(names []string, skip []string) []string {
	var out []string
	for _, name := range names {
		if _, ok := registry[name]; !ok || contains(skip, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RunSteps runs the named steps in order, skipping any listed in skip.
//
// RETURNS:
//   - The names of the steps that ran.
//   - The first step error, unchanged when it is already coded.
func RunSteps(ctx context.Context, names []string, env *Env, skip []string) ([]string, error) {
	env = env.withDefaults()
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}

	var ran []string
	for _, name := range names {
		step, ok := registry[name]
		if !ok {
			return ran, errors.New(errors.EInvalidTemplate, fmt.Sprintf("unknown step %q", name))
		}
		if skipped[name] {
			env.Logger.Info("Skipping step", zap.String("step", name))
			continue
		}
		if err := ctx.Err(); err != nil {
			return ran, err
		}

		env.Logger.Debug("Running step", zap.String("step", name))
		start := time.Now()
		if err := step.Run(ctx, env); err != nil {
			if _, coded := errors.AsScaffoldError(err); coded {
				return ran, err
			}
			return ran, errors.Wrap(errors.EHookFailed, fmt.Sprintf("step %s failed", name), err)
		}
		env.Logger.Debug("Step finished", zap.String("step", name), zap.Duration("duration", time.Since(start)))
		ran = append(ran, name)
	}
	return ran, nil
}
