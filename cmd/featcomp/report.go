package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pascalheritier/FeatureComparator/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <note-file>",
	Short: "Inspect an existing comparison note",
	Long:  `Parse a previously written note and show what the incremental filter would treat as already reported, per repository.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fragments, err := report.LoadExisting(args[0])
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if len(fragments) == 0 {
			fmt.Println(gray("No repository sections found"))
			return nil
		}

		for repo, lines := range fragments {
			fmt.Printf("%s\n", cyan(repo))
			if len(lines) == 0 {
				fmt.Printf("  %s\n", gray("(empty section)"))
			}
			for _, line := range lines {
				fmt.Printf("  %s\n", line)
			}
			fmt.Println()
		}
		return nil
	},
}
