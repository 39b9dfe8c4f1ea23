package hooks

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/internal/render"
	"github.com/ginjaninja78/scaffold/internal/template"
)

// interpreters maps script extensions to the program that runs them.
// Scripts with any other extension are executed directly.
var interpreters = map[string]string{
	".py": "python3",
	".sh": "sh",
}

// ScriptRunner runs a template's hook scripts.
type ScriptRunner struct {
	Template *template.Template
	Engine   *render.Engine
}

// Run executes the script for stage inside dir, if the template has one.
// The script is rendered with env.Context first.
//
// RETURNS:
//   - true when a script ran.
//   - E_HOOK_FAILED when it could not run or exited non-zero.
func (s *ScriptRunner) Run(ctx context.Context, stage string, dir string, env *Env) (bool, error) {
	name, data, ok := s.Template.HookScript(stage)
	if !ok {
		return false, nil
	}
	env = env.withDefaults()
	engine := s.Engine
	if engine == nil {
		engine = render.NewEngine()
	}

	script, err := engine.RenderString(string(data), env.Context)
	if err != nil {
		return false, errors.Wrap(errors.EHookFailed, fmt.Sprintf("failed to render hook %s", name), err)
	}

	ext := path.Ext(name)
	tmp, err := os.CreateTemp("", "scaffold-"+stage+"-*"+ext)
	if err != nil {
		return false, errors.Wrap(errors.EHookFailed, "failed to create hook script", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return false, errors.Wrap(errors.EHookFailed, "failed to write hook script", err)
	}
	if err := tmp.Close(); err != nil {
		return false, errors.Wrap(errors.EHookFailed, "failed to write hook script", err)
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return false, errors.Wrap(errors.EHookFailed, "failed to make hook script executable", err)
	}

	program, args := tmp.Name(), []string(nil)
	if interp, ok := interpreters[ext]; ok {
		program, args = interp, []string{tmp.Name()}
	}

	env.Logger.Info("Running hook script", zap.String("hook", name), zap.String("dir", dir))
	res, err := env.Runner.Run(ctx, program, args, exec.RunOpts{Dir: dir})
	if err != nil {
		return true, errors.Wrap(errors.EHookFailed, fmt.Sprintf("hook script %s could not run", name), err)
	}
	if res.ExitCode != 0 {
		return true, errors.NewWithDetails(errors.EHookFailed,
			fmt.Sprintf("hook script %s exited with status %d", name, res.ExitCode),
			map[string]string{"exit_code": fmt.Sprint(res.ExitCode), "stderr": strings.TrimSpace(res.Stderr)})
	}
	if out := strings.TrimSpace(res.Stdout); out != "" {
		fmt.Fprintln(env.Out, out)
	}
	return true, nil
}
