// =============================================================================
// scaffold - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every sub-command is
// attached here and shares the configuration and logger set up before it
// runs.
//
// COBRA CLI STRUCTURE:
//   rootCmd (scaffold)
//   ├── generateCmd   (scaffold generate)
//   ├── batchCmd      (scaffold batch)
//   ├── previewCmd    (scaffold preview)
//   ├── validateCmd   (scaffold validate)
//   ├── checkNameCmd  (scaffold check-name)
//   ├── licensesCmd   (scaffold licenses)
//   └── versionCmd    (scaffold version)
//
// SETUP (PersistentPreRunE):
//   1. Load the user configuration (--config, SCAFFOLD_CONFIG, XDG path)
//   2. Build the zap logger on stderr (debug with --verbose)
//
// EXIT CODES:
//   0 success, 2 usage errors, 1 everything else.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/scaffold/internal/config"
	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/generator"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path given with --config ("" uses the default lookup).
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg and logger are set by PersistentPreRunE.
var (
	cfg    *config.Config
	logger = zap.NewNop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "scaffold - Generate projects from templates and bootstrap them",
	Long: `scaffold renders a project template with a set of answers and then runs
the bootstrap steps a fresh project needs (git init, uv sync, git hooks,
license, remote repository, coding agent).

Templates are cookiecutter-compatible: a cookiecutter.json manifest and a
"{{cookiecutter.package_name}}" directory. They can be built in, local
directories or git repositories ("gh:user/repo").

Example Usage:
  scaffold generate                          # Built-in Python template, prompts for answers
  scaffold generate --no-input project_name="Data Tools"
  scaffold generate gh:acme/template --checkout v2
  scaffold batch --sheet projects.xlsx -o out/
  scaffold preview ./my-template --watch`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return errors.Wrap(errors.EInternal, "failed to initialize logger", err)
		}
		logger = l
		if cfg.Path() != "" {
			logger.Debug("Loaded configuration", zap.String("path", cfg.Path()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI and exits with the code matching the error.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		err = usageError(err)
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default $XDG_CONFIG_HOME/scaffold/config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.New(errors.EUsage, err.Error())
	})
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newLogger builds the console logger written to stderr.
//
// PARAMETERS:
//   - level: the configured level name ("debug", "info", "warn", "error").
//   - verbose: forces debug.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zcfg.DisableStacktrace = true
	zcfg.Sampling = nil

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// newGenerator creates a generator wired to the loaded configuration.
func newGenerator() *generator.Generator {
	return generator.New(cfg, generator.WithLogger(logger))
}

// usageError codes the argument errors cobra produces itself.
func usageError(err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand", "accepts ", "requires ", "required flag", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return errors.New(errors.EUsage, msg)
		}
	}
	return err
}

// usageArgs wraps a positional argument check so failures exit with 2.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return errors.New(errors.EUsage, err.Error())
		}
		return nil
	}
}
