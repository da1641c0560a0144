// Command welfaresim runs the benefits simulation from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "welfaresim",
	Short: "Agent-based simulation of benefit applications and investigations",
	Long: `welfaresim simulates households applying for SNAP, TANF and SSI, the
front-line evaluators who triage their applications and the reviewers who
investigate escalated cases, one month at a time.

Settings come from an optional YAML file overlaid with WELFARESIM_*
environment variables; command flags override both.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(monteCarloCmd)
	rootCmd.AddCommand(mechanismsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the welfaresim version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("welfaresim " + version)
	},
}
