package main

import (
	"github.com/aretw0/handshake/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <invitation-id>",
	Short: "Resolve one invitation and print the destination",
	Long: `Watches the Redis record store for the given invitation until it resolves.
Press Ctrl+C once to dismiss (navigate home) and twice to abort.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")
		summary, _ := cmd.Flags().GetBool("summary")
		style, _ := cmd.Flags().GetString("style")
		uri, _ := cmd.Flags().GetString("external-uri")

		return cli.Run(cli.RunOptions{
			InvitationID:          args[0],
			ConfigPath:            configPath,
			Overrides:             overrides(cmd),
			ExternalCredentialURI: uri,
			Debug:                 debug,
			JSON:                  jsonMode,
			Summary:               summary,
			Style:                 style,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("delay", 0, "Watchdog delay in milliseconds")
	runCmd.Flags().Bool("auto-redirect", false, "Navigate home when the delay elapses")
	runCmd.Flags().String("external-uri", "", "Only accept external credentials offered by this URI")
	runCmd.Flags().Bool("json", false, "Print the destination as JSON")
	runCmd.Flags().Bool("summary", false, "Render a summary table when resolved")
	runCmd.Flags().String("style", "", "Glamour style for the summary (dark, light, notty); empty auto-detects")
}
