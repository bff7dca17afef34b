package pipeline

import (
	"sort"

	"github.com/sustainthread/sustainnews/internal/config"
)

// sortByRank orders items by score descending, publish time descending.
// Score is the primary key; recency only breaks ties.
func sortByRank(items []Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Published.After(items[j].Published)
	})
}

// selectItems keeps items that clear their tier's threshold, then truncates
// to the overall output cap. Returns the selection and how many items fell
// below threshold.
func selectItems(items []Scored, cfg *config.Config) ([]Scored, int) {
	below := 0
	kept := make([]Scored, 0, len(items))
	for _, it := range items {
		if it.Score < cfg.Policy(it.Tier).Threshold {
			below++
			continue
		}
		kept = append(kept, it)
	}

	if max := cfg.Output.MaxOutputItems(); len(kept) > max {
		kept = kept[:max]
	}
	return kept, below
}
