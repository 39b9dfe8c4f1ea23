package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
)

// Install hints for the tools the steps call.
var installHints = map[string]string{
	"git":    "https://git-scm.com/downloads",
	"uv":     "curl -LsSf https://astral.sh/uv/install.sh | sh",
	"direnv": "pixi global install direnv",
	"gh":     "https://cli.github.com/",
	"codex":  "npm install -g @openai/codex",
}

// CheckProgram runs program without arguments to prove it is installed.
//
// ERRORS:
//   - E_TOOL_NOT_INSTALLED "<program> is not installed; install with `<install>`"
//   - E_COMMAND_FAILED "Issue with <program> encountered" on a non-zero exit
func CheckProgram(ctx context.Context, runner exec.CommandRunner, program, install string) error {
	res, err := runner.Run(ctx, program, nil, exec.RunOpts{})
	if err != nil {
		if exec.IsNotFound(err) {
			return errors.Wrap(errors.EToolNotInstalled,
				fmt.Sprintf("%s is not installed; install with `%s`", program, install), err)
		}
		return errors.Wrap(errors.ECommandFailed, fmt.Sprintf("Issue with %s encountered", program), err)
	}
	if res.ExitCode != 0 {
		return errors.NewWithDetails(errors.ECommandFailed,
			fmt.Sprintf("Issue with %s encountered", program),
			map[string]string{"exit_code": fmt.Sprint(res.ExitCode), "stderr": strings.TrimSpace(res.Stderr)})
	}
	return nil
}

// run executes a required command in the project directory.
func (e *Env) run(ctx context.Context, name string, args ...string) error {
	_, err := e.runOpts(ctx, exec.RunOpts{Dir: e.ProjectDir}, name, args...)
	return err
}

// runOpts executes a required command and maps failures to coded errors.
func (e *Env) runOpts(ctx context.Context, opts exec.RunOpts, name string, args ...string) (exec.CmdResult, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	res, err := e.Runner.Run(ctx, name, args, opts)
	if err != nil {
		if exec.IsNotFound(err) {
			msg := fmt.Sprintf("%s is not installed", name)
			if hint, ok := installHints[name]; ok {
				msg = fmt.Sprintf("%s is not installed; install with `%s`", name, hint)
			}
			return res, errors.Wrap(errors.EToolNotInstalled, msg, err)
		}
		return res, errors.Wrap(errors.ECommandFailed, fmt.Sprintf("failed to run `%s`", line), err)
	}
	if res.ExitCode != 0 {
		return res, errors.NewWithDetails(errors.ECommandFailed,
			fmt.Sprintf("`%s` exited with status %d", line, res.ExitCode),
			map[string]string{"exit_code": fmt.Sprint(res.ExitCode), "stderr": strings.TrimSpace(res.Stderr)})
	}
	return res, nil
}
