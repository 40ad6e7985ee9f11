package main

import (
	"github.com/aretw0/handshake/internal/cli"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Write agent records from a fixture file",
	Long:  `Loads invitations, notifications and connections from a YAML or JSON fixture into Redis, as an agent would.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		interval, _ := cmd.Flags().GetDuration("interval")

		return cli.Seed(cli.SeedOptions{
			File:       args[0],
			ConfigPath: configPath,
			Overrides:  overrides(cmd),
			Interval:   interval,
			Debug:      debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Duration("interval", 0, "Pause between writes, e.g. 500ms")
}
