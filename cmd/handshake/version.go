package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/handshake"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of handshake",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("handshake version %s\n", strings.TrimSpace(handshake.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
