package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "featcomp",
	Short: "Report features merged into one branch group but missing from another",
	Long: `featcomp reconciles tracked work items that have been merged into a
reference line of development but not yet into one or more comparison lines,
across multiple repositories, and writes the gap as an incremental note.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "featcomp.yaml", "path to the run configuration file")
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
