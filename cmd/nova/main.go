// Command nova is the thin CLI front door over the configuration store and
// marketplace service. Per spec.md §1, argument parsing and terminal
// presentation are not part of the core; this binary is a consumer of that
// core's public API, not an extension of it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "Manage bundles distributed through marketplaces",
	Long:  "Nova resolves, fetches, and tracks marketplaces of reusable bundles across global, project, and user configuration scopes.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nova %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(marketplaceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}
