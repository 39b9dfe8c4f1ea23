// =============================================================================
// scaffold - Main Entry Point
// =============================================================================
//
// scaffold generates projects from cookiecutter-style templates and runs the
// bootstrap steps a new project needs.
//
// USAGE:
//   scaffold generate   - Generate a project (prompts for answers)
//   scaffold batch      - Generate one project per spreadsheet row
//   scaffold preview    - Render a template with defaults, optionally watching it
//   scaffold validate   - Check a template without generating
//   scaffold check-name - Check package names
//   scaffold licenses   - List the licenses of a template
//   scaffold version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : generation pipeline (template, tmplctx, render, hooks, ...)
//   - pkg/utils/  : staging, commit and summary file handling
//   - templates/  : templates compiled into the binary
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/scaffold/cmd"
)

func main() {
	cmd.Execute()
}
