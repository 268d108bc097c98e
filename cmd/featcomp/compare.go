package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pascalheritier/FeatureComparator/internal/compare"
	"github.com/pascalheritier/FeatureComparator/internal/config"
	"github.com/pascalheritier/FeatureComparator/internal/gitrepo"
	"github.com/pascalheritier/FeatureComparator/internal/report"
	"github.com/pascalheritier/FeatureComparator/internal/tracker"
)

var (
	compareOutput   string
	comparePrevious string
	compareDryRun   bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run a full comparison and write the note",
	Long: `Synchronize every configured repository, mine merge history for feature
references, resolve them against the tracker, and write the per-repository
missing/unknown note. Entries already listed in the previous note are
skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if compareOutput != "" {
			cfg.Output = compareOutput
		}
		if comparePrevious != "" {
			cfg.Previous = comparePrevious
		}

		client, err := tracker.NewClient(tracker.ClientOptions{
			BaseURL:           cfg.Tracker.BaseURL,
			APIKey:            cfg.Tracker.APIKey,
			RequestsPerSecond: cfg.Tracker.RequestsPerSecond,
		})
		if err != nil {
			return err
		}

		resolver := tracker.NewResolver(client, os.Stderr)
		syncer := gitrepo.NewSynchronizer(gitrepo.NewTerminalPrompt(), os.Stderr)
		builder := compare.NewBuilder(gitrepo.NewMiner(), resolver, os.Stderr)
		classifier := compare.NewClassifier(client.OpenIssue, cfg.PlannedMarkers, cfg.Tracker.OpenStatusID, os.Stderr)

		var filter compare.ResultFilter
		if cfg.Previous != "" {
			filter = func(results []compare.RepoResult) ([]compare.RepoResult, error) {
				prior, err := report.LoadExisting(cfg.Previous)
				if err != nil {
					return nil, err
				}
				return report.Filter(results, prior), nil
			}
		}

		comparator := compare.NewComparator(syncer, builder, classifier, cfg, filter, os.Stderr)
		results, err := comparator.Run(ctx)
		if err != nil {
			return err
		}

		if compareDryRun {
			fmt.Print(string(report.Render(results)))
			return nil
		}

		if err := report.Write(cfg.Output, results); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s wrote %s (%d repositories)\n", green("✓"), cfg.Output, len(results))
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "note output path (overrides config)")
	compareCmd.Flags().StringVarP(&comparePrevious, "previous", "p", "", "prior note used for incremental filtering (overrides config)")
	compareCmd.Flags().BoolVar(&compareDryRun, "dry-run", false, "print the note to stdout instead of writing it")
}
