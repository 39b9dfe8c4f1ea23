// =============================================================================
// scaffold - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the main command of scaffold. It
// renders one project from a template and runs the template's hooks.
//
// COMMAND USAGE:
//   scaffold generate [template] [key=value...] [flags]
//
// ARGUMENTS:
//   template   : built-in name, local directory, repository URL or
//                abbreviation ("gh:user/repo"); default "python"
//   key=value  : answers that are never prompted for
//
// FLAGS:
//   -o, --output-dir           : where the project directory is created
//   --no-input                 : accept defaults without prompting
//   --replay                   : reuse the answers of the last run
//   --replay-file              : reuse answers from a file
//   -f, --overwrite-if-exists  : write into an existing project directory
//   --skip-hooks               : skip hook scripts and built-in steps
//   --skip-step                : skip one built-in step (repeatable)
//   --checkout                 : branch, tag or commit of a repository template
//   --directory                : template sub-directory of a repository
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/generator"
	"github.com/ginjaninja78/scaffold/internal/tmplctx"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// generateFlags holds the flags shared by generate, batch and preview.
type generateFlags struct {
	outputDir  string
	noInput    bool
	replay     bool
	replayFile string
	overwrite  bool
	skipHooks  bool
	skipSteps  []string
	checkout   string
	directory  string
}

var genFlags generateFlags

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate [template] [key=value...]",
	Short: "Generate a project from a template",
	Long: `The generate command builds the answers for a template (replay file, or
defaults + configuration + key=value arguments + prompts), renders the project
and runs the template's pre- and post-generation hooks.

Nothing is written when an answer is invalid or the template references an
undefined key. A failing post-generation step keeps the generated project.`,
	Args: usageArgs(cobra.ArbitraryArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.StringVarP(&genFlags.outputDir, "output-dir", "o", ".", "Directory the project is created in")
	f.BoolVar(&genFlags.noInput, "no-input", false, "Do not prompt; use defaults and configuration")
	f.BoolVar(&genFlags.replay, "replay", false, "Reuse the answers saved by the last run of the template")
	f.StringVar(&genFlags.replayFile, "replay-file", "", "Reuse the answers saved in this file")
	f.BoolVarP(&genFlags.overwrite, "overwrite-if-exists", "f", false, "Write into an existing project directory")
	f.BoolVar(&genFlags.skipHooks, "skip-hooks", false, "Do not run hook scripts or built-in steps")
	f.StringSliceVar(&genFlags.skipSteps, "skip-step", nil, "Skip a built-in step (repeatable)")
	f.StringVar(&genFlags.checkout, "checkout", "", "Branch, tag or commit to check out for repository templates")
	f.StringVar(&genFlags.directory, "directory", "", "Template sub-directory inside the repository")
}

// =============================================================================
// MAIN GENERATE FUNCTION
// =============================================================================

func runGenerate(cmd *cobra.Command, args []string) error {
	if genFlags.replay && genFlags.replayFile != "" {
		return errors.New(errors.EUsage, "--replay and --replay-file cannot be used together")
	}

	ref, pairs := splitTemplateArgs(args)
	extra, err := tmplctx.ParseExtraContext(pairs)
	if err != nil {
		return err
	}

	opts := genFlags.options(ref)
	opts.Extra = extra

	res := newGenerator().Run(cmd.Context(), opts)
	if res.Err != nil {
		if res.ProjectDir != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Project was generated at %s but a hook failed.\n", res.ProjectDir)
		}
		return res.Err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %s (%d files) in %s\n",
		res.ProjectDir, res.FilesWritten, res.Duration.Round(time.Millisecond))
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// options converts the flags into generator options.
func (f generateFlags) options(ref string) generator.Options {
	return generator.Options{
		Template:   ref,
		Checkout:   f.checkout,
		Directory:  f.directory,
		OutputDir:  f.outputDir,
		NoInput:    f.noInput,
		Replay:     f.replay,
		ReplayFile: f.replayFile,
		Overwrite:  f.overwrite,
		SkipHooks:  f.skipHooks,
		SkipSteps:  f.skipSteps,
	}
}

// splitTemplateArgs separates the optional template reference from the
// key=value answers. The template, when given, is the first argument and
// contains no "=".
func splitTemplateArgs(args []string) (string, []string) {
	if len(args) == 0 || strings.Contains(args[0], "=") {
		return "", args
	}
	return args[0], args[1:]
}
