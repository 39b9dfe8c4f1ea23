package hooks

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/exec"
	"github.com/ginjaninja78/scaffold/internal/types"
	"github.com/ginjaninja78/scaffold/internal/validation"
	"github.com/ginjaninja78/scaffold/pkg/utils"
)

// DataDir holds template material consumed by the steps and removed by
// remove_data_dir.
const DataDir = "data"

// Agent guidance file names.
const (
	agentsReadme = "AGENTS_README.md"
	claudeReadme = "CLAUDE.md"
	codexReadme  = "AGENTS.md"
)

func allowDirenv(ctx context.Context, env *Env) error {
	if err := CheckProgram(ctx, env.Runner, "direnv", installHints["direnv"]); err != nil {
		return err
	}
	return env.run(ctx, "direnv", "allow", ".")
}

func gitHooks(ctx context.Context, env *Env) error {
	return env.run(ctx, "uv", "run", "prek", "install")
}

// setupCodingAgent copies the agent guidance into place and starts the agent
// so the user can finish its setup.
func setupCodingAgent(ctx context.Context, env *Env) error {
	agent, err := validation.CheckAgent(env.Context.String("coding_agent"))
	if err != nil {
		return err
	}
	if agent == validation.AgentNone {
		return nil
	}
	env.Logger.Info("Setting up coding agent", zap.String("agent", agent))

	dest := claudeReadme
	if agent == validation.AgentCodex {
		dest = codexReadme
	}
	src := filepath.Join(env.ProjectDir, DataDir, agentsReadme)
	if err := utils.CopyFile(src, filepath.Join(env.ProjectDir, dest)); err != nil {
		return errors.Wrap(errors.EHookFailed, "failed to copy agent guidance", err)
	}
	env.Logger.Info("Copied agent guidance", zap.String("from", filepath.Join(DataDir, agentsReadme)), zap.String("to", dest))

	opts := exec.RunOpts{Dir: env.ProjectDir, Interactive: true}
	switch agent {
	case validation.AgentClaude:
		env.Logger.Info("Type /init in claude to finish setup and then exit.")
		if err := utils.CopyTree(filepath.Join(env.ProjectDir, DataDir, ".claude"), filepath.Join(env.ProjectDir, ".claude")); err != nil {
			return errors.Wrap(errors.EHookFailed, "failed to copy .claude settings", err)
		}
		if _, err := env.runOpts(ctx, opts, filepath.Join(env.HomeDir, ".claude", "local", "claude")); err != nil {
			if errors.GetCode(err) == errors.EToolNotInstalled {
				return errors.Wrap(errors.EToolNotInstalled,
					"claude failed to run, check if installed in `~/.claude/local/claude`\n"+
						"or install with: `npm install -g @anthropic-ai/claude-code`", err)
			}
			return err
		}
	case validation.AgentCodex:
		if _, err := env.runOpts(ctx, opts, "codex"); err != nil {
			if errors.GetCode(err) == errors.EToolNotInstalled {
				return errors.Wrap(errors.EToolNotInstalled,
					"codex failed to run, check if installed\nor install with appropriate package manager", err)
			}
			return err
		}
	}
	return nil
}

func removeDataDir(_ context.Context, env *Env) error {
	if err := os.RemoveAll(filepath.Join(env.ProjectDir, DataDir)); err != nil {
		return errors.Wrap(errors.EHookFailed, "failed to remove data directory", err)
	}
	return nil
}

func checkAgent(c *types.Context, _ []string) error {
	_, err := validation.CheckAgent(c.String("coding_agent"))
	return err
}
