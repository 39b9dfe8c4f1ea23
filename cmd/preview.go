// =============================================================================
// scaffold - Preview Command
// =============================================================================
//
// This file defines the 'preview' command, used while writing a template. It
// renders the template with its defaults, without hooks, into a scratch
// directory, and with --watch renders again whenever a template file changes.
//
// COMMAND USAGE:
//   scaffold preview [template] [key=value...] [flags]
//
// FLAGS:
//   -o, --output-dir : scratch directory (default $TMPDIR/scaffold-preview)
//   --watch          : re-render on every change until interrupted
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/generator"
	"github.com/ginjaninja78/scaffold/internal/tmplctx"
	"github.com/ginjaninja78/scaffold/internal/watch"
)

var (
	previewOutputDir string
	previewWatch     bool
)

var previewCmd = &cobra.Command{
	Use:   "preview [template] [key=value...]",
	Short: "Render a template with its defaults, optionally on every change",
	Long: `The preview command renders a template without prompting and without
running hooks, overwriting the previous preview. The replay directory is left
alone.

With --watch the template directory is watched and the preview is rendered
again after every change, until interrupted with Ctrl-C.`,
	Args: usageArgs(cobra.ArbitraryArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOutputDir, "output-dir", "o",
		filepath.Join(os.TempDir(), "scaffold-preview"), "Scratch directory for the preview")
	previewCmd.Flags().BoolVar(&previewWatch, "watch", false, "Render again whenever the template changes")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ref, pairs := splitTemplateArgs(args)
	extra, err := tmplctx.ParseExtraContext(pairs)
	if err != nil {
		return err
	}

	opts := generator.Options{
		Template:     ref,
		OutputDir:    previewOutputDir,
		Extra:        extra,
		NoInput:      true,
		Overwrite:    true,
		SkipHooks:    true,
		NoReplaySave: true,
	}
	g := newGenerator()
	out := cmd.OutOrStdout()

	if !previewWatch {
		return renderPreview(cmd.Context(), g, opts, out)
	}

	tpl, err := g.Locate(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if tpl.Dir == "" {
		return errors.Newf(errors.EUsage, "--watch needs a local template directory; %q is built in", tpl.Name)
	}
	// local directories are located again on every change, so the path
	// is used from here on
	opts.Template = tpl.Dir

	if err := renderPreview(cmd.Context(), g, opts, out); err != nil {
		errors.Print(cmd.ErrOrStderr(), err)
	}

	w := watch.New(tpl.Dir, watch.DefaultDebounce, logger)
	return w.Watch(cmd.Context(), func(changed []string) {
		fmt.Fprintf(out, "\nChanged: %s\n", strings.Join(changed, ", "))
		if err := renderPreview(cmd.Context(), g, opts, out); err != nil {
			errors.Print(cmd.ErrOrStderr(), err)
		}
	})
}

// renderPreview runs one preview generation and prints where it went.
func renderPreview(ctx context.Context, g *generator.Generator, opts generator.Options, out io.Writer) error {
	res := g.Run(ctx, opts)
	if res.Err != nil {
		return res.Err
	}
	logger.Debug("Preview rendered", zap.Duration("duration", res.Duration))
	fmt.Fprintf(out, "Preview of %s: %s (%d files)\n", res.TemplateName, res.ProjectDir, res.FilesWritten)
	return nil
}
