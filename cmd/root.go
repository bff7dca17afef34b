package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sustainthread/sustainnews/internal/archive"
	"github.com/sustainthread/sustainnews/internal/config"
	"github.com/sustainthread/sustainnews/internal/output"
	"github.com/sustainthread/sustainnews/internal/pipeline"
	"github.com/sustainthread/sustainnews/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagOutput string
	flagDryRun bool
	flagCheck  bool
)

var rootCmd = &cobra.Command{
	Use:   "sustainnews",
	Short: "Sustainability news relevance pipeline",
	Long: `sustainnews fetches tiered RSS/Atom feeds, filters and scores entries for
sustainability and fashion relevance, deduplicates and ranks the survivors,
and writes the bounded selection as news.json for the site frontend.`,
	RunE: runFetch,
}

func init() {
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "output path (overrides config)")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "run the pipeline and print the report without writing anything")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagOutput != "" {
		cfg.Output.Path = flagOutput
	}

	fmt.Printf("Fetching %d feeds...\n", len(cfg.EnabledSources()))
	result := pipeline.New(cfg).Run(context.Background())

	for _, e := range result.Errors {
		fmt.Printf("  [warn] %v\n", e)
	}

	fmt.Print(renderReport(result.Stats))

	if flagDryRun {
		fmt.Println("Dry run: nothing written.")
		return nil
	}

	doc := output.Build(result.Items, result.RanAt)
	if err := output.Write(doc, cfg.Output.Path); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Printf("Wrote %d item(s) to %s\n", doc.TotalResults, cfg.Output.Path)

	if cfg.Output.Backup {
		backup, err := output.WriteBackup(doc, cfg.Output.Path, result.RanAt)
		if err != nil {
			fmt.Printf("  [warn] backup failed: %v\n", err)
		} else {
			fmt.Printf("Backup saved as %s\n", backup)
		}
	}

	archiveRun(result)
	return nil
}

// archiveRun stores the selection for the browse and stats commands.
// Best-effort: a broken archive never fails the run that just produced a
// perfectly good news.json.
func archiveRun(result pipeline.Result) {
	db, err := archive.Open(config.ArchivePath())
	if err != nil {
		fmt.Printf("  [warn] opening archive: %v\n", err)
		return
	}
	defer db.Close()

	records := make([]archive.Record, 0, len(result.Items))
	for _, it := range result.Items {
		records = append(records, archive.Record{
			ID:          archive.RecordID(it.URL, it.Title),
			Source:      it.Source,
			Tier:        it.Tier,
			Title:       it.Title,
			URL:         it.URL,
			Description: it.Description,
			Score:       it.Score,
			Published:   it.Published,
			TimeKnown:   it.TimeKnown,
			FetchedAt:   result.RanAt,
		})
	}
	if err := db.UpsertRecords(records); err != nil {
		fmt.Printf("  [warn] archiving items: %v\n", err)
		return
	}
	if err := db.SetLastRun(result.RanAt); err != nil {
		fmt.Printf("  [warn] recording last run: %v\n", err)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sustainnews %s (commit: %s, built: %s)\n", version, commit, date)
		if flagCheck {
			if r := update.Check(context.Background(), version); r != nil {
				fmt.Printf("A newer release is available: %s\n", r.LatestVersion)
			} else {
				fmt.Println("Up to date.")
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
