package main

import (
	"github.com/aretw0/handshake/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes processes over a JSON API with Server-Sent Events, and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		return cli.Serve(cli.ServeOptions{
			ConfigPath: configPath,
			Overrides:  overrides(cmd),
			Debug:      debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides the config file)")
	serveCmd.Flags().Int("delay", 0, "Watchdog delay in milliseconds")
	serveCmd.Flags().Bool("auto-redirect", false, "Navigate home when the delay elapses")
	serveCmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
}
