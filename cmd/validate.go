// =============================================================================
// scaffold - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a template without
// generating anything.
//
// COMMAND USAGE:
//   scaffold validate [template] [key=value...] [--report file]
//
// CHECKS:
//   1. The manifest loads and its built-in steps exist
//   2. Every default renders
//   3. Every key referenced by the project files and hook scripts is defined
//   4. The default package name is importable (templates that check it)
//   5. Every license choice has a license file (warning)
//
// The built-in steps the template runs are listed after the report.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/scaffold/internal/generator"
	"github.com/ginjaninja78/scaffold/internal/hooks"
	"github.com/ginjaninja78/scaffold/internal/tmplctx"
	"github.com/ginjaninja78/scaffold/internal/validation"
)

var (
	validateReport    string
	validateCheckout  string
	validateDirectory string
)

var validateCmd = &cobra.Command{
	Use:   "validate [template] [key=value...]",
	Short: "Check a template without generating a project",
	Long: `The validate command loads a template, builds its default answers and
renders every file in memory. All problems are listed together; the command
exits 1 when at least one of them is an error.`,
	Args: usageArgs(cobra.ArbitraryArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, pairs := splitTemplateArgs(args)
		extra, err := tmplctx.ParseExtraContext(pairs)
		if err != nil {
			return err
		}

		report, err := newGenerator().Validate(cmd.Context(), generator.Options{
			Template:  ref,
			Checkout:  validateCheckout,
			Directory: validateDirectory,
			Extra:     extra,
		})
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), validation.FormatReport(report))
		fmt.Fprint(cmd.OutOrStdout(), formatSteps(report.Steps))
		if validateReport != "" {
			if err := validation.WriteReport(report, validateReport); err != nil {
				return err
			}
		}
		return report.Err()
	},
}

// formatSteps lists step names with their descriptions.
func formatSteps(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nBuilt-in steps:\n")
	for _, name := range names {
		desc := "unknown step"
		if step, ok := hooks.Lookup(name); ok {
			desc = step.Description
		}
		fmt.Fprintf(&b, "  %-20s %s\n", name, desc)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateReport, "report", "", "Also write the report to this file")
	validateCmd.Flags().StringVar(&validateCheckout, "checkout", "", "Branch, tag or commit to check out for repository templates")
	validateCmd.Flags().StringVar(&validateDirectory, "directory", "", "Template sub-directory inside the repository")
}
