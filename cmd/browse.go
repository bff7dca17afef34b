package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sustainthread/sustainnews/internal/archive"
	"github.com/sustainthread/sustainnews/internal/config"
	"github.com/sustainthread/sustainnews/internal/tui"
)

var (
	flagBrowseSince string
	flagBrowseLimit int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse archived items in a terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := archive.Open(config.ArchivePath())
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		opts := archive.QueryOpts{Limit: flagBrowseLimit}
		if flagBrowseSince != "" {
			d, err := parseSince(flagBrowseSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = time.Now().Add(-d)
		}

		records, err := db.GetRecords(opts)
		if err != nil {
			return fmt.Errorf("loading items: %w", err)
		}
		return tui.Run(records)
	},
}

func init() {
	browseCmd.Flags().StringVar(&flagBrowseSince, "since", "", "only show items from the last duration (e.g., 7d, 24h)")
	browseCmd.Flags().IntVar(&flagBrowseLimit, "limit", 200, "maximum items to load")
}
