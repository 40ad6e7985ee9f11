package main

import (
	"fmt"
	"os"

	"github.com/aretw0/handshake/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "handshake",
	Short: "Handshake resolves wallet invitations into a destination screen",
	Long: `Handshake watches an agent's record store after an invitation is scanned
and decides, exactly once, where the user should land: a chat, a proof review,
a credential offer, an external credential, or home.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "handshake.yaml", "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle traces")
	rootCmd.PersistentFlags().String("redis", "", "Redis address (overrides the config file)")
	rootCmd.PersistentFlags().String("prefix", "", "Redis key prefix (overrides the config file)")
}

// overrides collects the flags that were explicitly set.
func overrides(cmd *cobra.Command) cli.Overrides {
	var o cli.Overrides
	flags := cmd.Flags()
	if flags.Changed("redis") {
		v, _ := flags.GetString("redis")
		o.RedisAddr = &v
	}
	if flags.Changed("prefix") {
		v, _ := flags.GetString("prefix")
		o.RedisPrefix = &v
	}
	if flags.Changed("delay") {
		v, _ := flags.GetInt("delay")
		o.DelayMS = &v
	}
	if flags.Changed("auto-redirect") {
		v, _ := flags.GetBool("auto-redirect")
		o.AutoRedirect = &v
	}
	if flags.Changed("port") {
		v, _ := flags.GetString("port")
		o.Port = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	return o
}
