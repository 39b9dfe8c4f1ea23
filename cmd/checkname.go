package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/validation"
)

// checkNameCmd validates package names the way the pre-generation step does
// and suggests the name the built-in template would derive.
var checkNameCmd = &cobra.Command{
	Use:   "check-name <name>...",
	Short: "Check whether names can be used as the generated package name",
	Example: `  scaffold check-name my_tools
  scaffold check-name "Café Röster 2" class`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		invalid := 0
		for _, name := range args {
			if err := validation.CheckModuleName(name); err != nil {
				invalid++
				msg := err.Error()
				if se, ok := errors.AsScaffoldError(err); ok {
					msg = se.Msg
				}
				fmt.Fprintf(out, "  ✗ %s\n    %s\n    suggestion: %s\n", name, msg, validation.ModuleName(name))
				continue
			}
			fmt.Fprintf(out, "  ✓ %s\n", name)
		}
		if invalid > 0 {
			return errors.Newf(errors.EInvalidModuleName, "%d of %d names are not valid module names", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkNameCmd)
}
