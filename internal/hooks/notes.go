package hooks

import (
	"context"
	"fmt"
)

const (
	ansiSuccess    = "\x1b[1;32m"
	ansiTerminator = "\x1b[0m"
)

const notesText = `
If using GitHub, generate a CODECOV_TOKEN at:
https://app.codecov.io/gh/%[1]s/%[2]s/settings
and add it to the GitHub repository secrets as CODECOV_TOKEN at:
https://github.com/%[1]s/%[2]s/settings/secrets/actions

`

func notes(_ context.Context, env *Env) error {
	fmt.Fprintf(env.Out, notesText, env.Context.String("github_username"), env.Context.String("package_name"))
	fmt.Fprintf(env.Out, "%sProject successfully initialized%s\n", ansiSuccess, ansiTerminator)
	return nil
}
