// Package main implements the ilpatch CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ilpatch/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ilpatch",
	Short: "Build-time plug engine for IL modules",
	Long:  `ilpatch rewrites IL modules at build time by transplanting plug bodies over their platform-specific targets`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
