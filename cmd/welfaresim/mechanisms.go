package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"

	"github.com/spf13/cobra"
)

var mechanismsCmd = &cobra.Command{
	Use:   "mechanisms",
	Short: "List the mechanism presets",
	Long: `List the named mechanism presets accepted by --mechanisms and by the
mechanisms.preset configuration key, with the mechanisms each one enables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "preset\tactive")
		for _, name := range mechanism.PresetNames() {
			cfg, err := mechanism.ParsePreset(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\n", name, cfg)
		}
		return tw.Flush()
	},
}
