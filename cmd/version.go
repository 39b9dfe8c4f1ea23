// =============================================================================
// scaffold - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   scaffold version
//
// OUTPUT:
//   scaffold
//   Version:    1.0.0
//   Build Date: 2026-01-01
//   Go Version: go1.24.0
//   Templates:  python
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/scaffold/templates"
)

// These variables are set at build time using ldflags:
//   go build -ldflags "-X 'github.com/ginjaninja78/scaffold/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "dev"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and built-in templates.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "scaffold")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "Templates:  %s\n", strings.Join(templates.Names(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
