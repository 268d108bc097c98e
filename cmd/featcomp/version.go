package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the featcomp version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("featcomp %s\n", version)
	},
}
