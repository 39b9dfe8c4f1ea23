// =============================================================================
// scaffold - Batch Command
// =============================================================================
//
// This file defines the 'batch' command, which generates one project per row
// of a spreadsheet. The header row names the template keys; each later row
// holds one project's answers.
//
// COMMAND USAGE:
//   scaffold batch [template] --sheet projects.xlsx [flags]
//
// FLAGS:
//   --sheet        : .xlsx or .csv file with one project per row (required)
//   --sheet-name   : worksheet to read (default: first sheet)
//   -o             : output directory for the projects and the summary
//   --concurrency  : generations in flight (default: max_concurrency)
//   -f, --skip-hooks, --skip-step, --checkout, --directory as for generate
//
// PROCESSING PIPELINE:
//   1. Read the sheet
//   2. Resolve the template once
//   3. Generate every row (without prompting), bounded by --concurrency
//   4. Write scaffold-batch-<timestamp>.yaml into the output directory
//
// A failing row does not stop the others; the command exits 1 when any row
// failed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/scaffold/internal/batch"
	"github.com/ginjaninja78/scaffold/internal/errors"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	batchFlags       generateFlags
	batchSheet       string
	batchSheetName   string
	batchConcurrency int
)

// =============================================================================
// BATCH COMMAND DEFINITION
// =============================================================================

var batchCmd = &cobra.Command{
	Use:   "batch [template]",
	Short: "Generate one project per spreadsheet row",
	Long: `The batch command reads a spreadsheet (.xlsx or .csv) whose header row names
template keys and generates one project per data row, without prompting.

Each row is generated independently, and errors in one row do not affect the
others. A YAML summary of every row is written to the output directory.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(batchCmd)

	f := batchCmd.Flags()
	f.StringVar(&batchSheet, "sheet", "", "Spreadsheet (.xlsx, .csv) with one project per row")
	f.StringVar(&batchSheetName, "sheet-name", "", "Worksheet to read (default: first sheet)")
	f.IntVar(&batchConcurrency, "concurrency", 0, "Generations in flight (default: max_concurrency from the configuration)")
	f.StringVarP(&batchFlags.outputDir, "output-dir", "o", ".", "Directory the projects are created in")
	f.BoolVarP(&batchFlags.overwrite, "overwrite-if-exists", "f", false, "Write into existing project directories")
	f.BoolVar(&batchFlags.skipHooks, "skip-hooks", false, "Do not run hook scripts or built-in steps")
	f.StringSliceVar(&batchFlags.skipSteps, "skip-step", nil, "Skip a built-in step (repeatable)")
	f.StringVar(&batchFlags.checkout, "checkout", "", "Branch, tag or commit to check out for repository templates")
	f.StringVar(&batchFlags.directory, "directory", "", "Template sub-directory inside the repository")
	_ = batchCmd.MarkFlagRequired("sheet")
}

// =============================================================================
// MAIN BATCH FUNCTION
// =============================================================================

func runBatch(cmd *cobra.Command, args []string) error {
	if batchConcurrency < 0 {
		return errors.New(errors.EUsage, "--concurrency must be positive")
	}
	concurrency := batchConcurrency
	if concurrency == 0 {
		concurrency = cfg.MaxConcurrency
	}

	ref := ""
	if len(args) == 1 {
		ref = args[0]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== scaffold batch ===")

	report, err := batch.Run(cmd.Context(), newGenerator(), batch.Options{
		Base:        batchFlags.options(ref),
		SheetPath:   batchSheet,
		SheetName:   batchSheetName,
		Concurrency: concurrency,
	}, logger)
	if report == nil {
		return err
	}

	// =========================================================================
	// PRINT RESULTS
	// =========================================================================

	s := report.Summary
	for _, g := range s.Generated {
		fmt.Fprintf(out, "  ✓ row %d -> %s\n", g.Row, g.ProjectDir)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(out, "  ✗ row %d: %s\n", f.Row, f.Error)
	}

	fmt.Fprintln(out, "\n=== Batch Complete ===")
	fmt.Fprintf(out, "Template:        %s\n", s.Template)
	fmt.Fprintf(out, "Total rows:      %d\n", s.Total)
	fmt.Fprintf(out, "Successful:      %d\n", s.Successful)
	fmt.Fprintf(out, "Failed:          %d\n", s.Failed)
	fmt.Fprintf(out, "Time elapsed:    %s\n", s.Duration)
	if report.SummaryPath != "" {
		fmt.Fprintf(out, "Summary:         %s\n", filepath.Clean(report.SummaryPath))
	}
	return err
}
