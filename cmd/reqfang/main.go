// Package main provides the entry point for the reqfang CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/reqfang/cmd/reqfang/commands"
	"github.com/Sumatoshi-tech/reqfang/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reqfang",
		Short: "Reqfang - generate requirements.txt from what your code actually imports",
		Long: `Reqfang inspects the packages installed in a Python environment,
scans your source tree for the ones it actually imports, and writes a
filtered requirements.txt.

Commands:
  generate  Generate a filtered requirements file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "reqfang %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
