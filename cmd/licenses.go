package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/scaffold/internal/generator"
)

// licensesCmd lists the license files a template ships for set_license.
var licensesCmd = &cobra.Command{
	Use:   "licenses [template]",
	Short: "List the licenses a template can add to a project",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}
		tpl, err := newGenerator().Locate(cmd.Context(), generator.Options{Template: ref})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		licenses := tpl.Licenses()
		if len(licenses) == 0 {
			fmt.Fprintf(out, "Template %s ships no licenses.\n", tpl.Name)
			return nil
		}
		fmt.Fprintf(out, "Licenses of template %s:\n", tpl.Name)
		for _, l := range licenses {
			fmt.Fprintf(out, "  %s\n", l)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(licensesCmd)
}
