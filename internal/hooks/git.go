package hooks

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/types"
	"github.com/ginjaninja78/scaffold/internal/validation"
)

const (
	// DefaultRemote is the remote name the steps configure.
	DefaultRemote = "origin"

	// DefaultBranch is the upstream branch configured after creating a
	// GitHub repository.
	DefaultBranch = "master"
)

func gitInit(ctx context.Context, env *Env) error {
	return env.run(ctx, "git", "init")
}

func gitInitialCommit(ctx context.Context, env *Env) error {
	if err := env.run(ctx, "git", "add", "."); err != nil {
		return err
	}
	return env.run(ctx, "git", "commit", "-m", "Setup")
}

// setupRemote creates a GitHub repository when github_setup names a
// visibility; otherwise project_url is added as the origin remote.
func setupRemote(ctx context.Context, env *Env) error {
	privacy := env.Context.String("github_setup")
	if !validation.IsNone(privacy) {
		return githubSetup(ctx, env, privacy, DefaultRemote, DefaultBranch)
	}
	return env.run(ctx, "git", "remote", "add", DefaultRemote, SSHRemoteURL(env.Context.String("project_url")))
}

// SSHRemoteURL converts "https://host/owner/repo.git" into
// "git@host:owner/repo.git". Other forms are returned unchanged.
func SSHRemoteURL(url string) string {
	parts := strings.SplitN(url, "/", 4)
	if len(parts) != 4 || !strings.HasSuffix(parts[0], ":") || parts[1] != "" || parts[2] == "" {
		return url
	}
	return fmt.Sprintf("git@%s:%s", parts[2], parts[3])
}

func githubSetupStep(ctx context.Context, env *Env) error {
	return githubSetup(ctx, env, env.Context.String("github_setup"), DefaultRemote, DefaultBranch)
}

// githubSetup creates the repository with the GitHub CLI. A failed create
// (usually "already exists") and a failed upstream configuration are logged
// and do not fail the step.
func githubSetup(ctx context.Context, env *Env, privacy, remote, branch string) error {
	if err := validation.CheckPrivacy(privacy); err != nil {
		return err
	}
	if err := CheckProgram(ctx, env.Runner, "gh", installHints["gh"]); err != nil {
		return err
	}

	pkg := env.Context.String("package_name")
	if err := env.run(ctx, "gh", "repo", "create", pkg, "--"+privacy, "--remote", remote, "--source", "."); err != nil {
		env.Logger.Error("Error creating GitHub repository, likely already exists", zap.Error(err))
	}

	if err := env.run(ctx, "git", "config", "branch."+branch+".remote", remote); err != nil {
		env.Logger.Error("Error setting upstream", zap.String("branch", branch), zap.Error(err))
		return nil
	}
	if err := env.run(ctx, "git", "config", "branch."+branch+".merge", "refs/heads/"+branch); err != nil {
		env.Logger.Error("Error setting upstream", zap.String("branch", branch), zap.Error(err))
	}
	return nil
}

// checkRemote validates github_setup when it asks for a GitHub repository.
func checkRemote(c *types.Context, _ []string) error {
	privacy := c.String("github_setup")
	if validation.IsNone(privacy) {
		return nil
	}
	return validation.CheckPrivacy(privacy)
}

func checkGitHubSetup(c *types.Context, _ []string) error {
	return validation.CheckPrivacy(c.String("github_setup"))
}
