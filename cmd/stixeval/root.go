// stixeval evaluates STIX/CybOX indicator documents against a forensic case.
//
// Usage:
//
//	stixeval seed <seed.yaml> [--case-db=<path>]
//	stixeval eval <document.yaml>... [--short-circuit] [--report-all] [--workers=N]
//	stixeval inspect [--run=<id>] [--limit=N]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// #region root
// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	caseDB     string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:   "stixeval",
	Short: "Evaluate STIX indicators against a forensic case",
	Long: "stixeval matches the observables of STIX/CybOX indicator documents against\n" +
		"the files, artifacts and registry hives of a case and tags every hit.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "Path to YAML config file")
	f.StringVar(&rootFlags.caseDB, "case-db", "", "Case database path (overrides config)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.Version = version
}
// #endregion root

// #region main
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
// #endregion main
