package archive

import "time"

// Record is one accepted item as stored across runs. The archive exists for
// browsing and operational history; the pipeline itself never reads it, so
// deduplication stays a single-run concept.
type Record struct {
	ID          string
	Source      string
	Tier        string
	Title       string
	URL         string
	Description string
	Score       int
	Published   time.Time
	TimeKnown   bool
	FetchedAt   time.Time
}

type QueryOpts struct {
	Since    time.Time
	Sources  []string
	Search   string
	MinScore int
	Limit    int
}
