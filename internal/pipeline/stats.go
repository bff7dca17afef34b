package pipeline

// Stats aggregates one run's counters. Reset at run start, read by the
// reporter at run end; never persisted.
type Stats struct {
	Fetched         int            // entries considered across all feeds
	FeedErrors      int            // feeds that failed to fetch or parse
	SkippedEntries  int            // malformed entries dropped
	Expired         int            // entries outside the max-age window
	RejectedByRule  int            // hard rule rejections
	RuleHits        map[string]int // rejections per rule name
	Duplicates      int            // items collapsed by dedup
	RejectedByScore int            // items below their tier threshold
	AcceptedByTier  map[string]int
	Histogram       map[int]int // score distribution of deduped items
}

func newStats() Stats {
	return Stats{
		RuleHits:       make(map[string]int),
		AcceptedByTier: make(map[string]int),
		Histogram:      make(map[int]int),
	}
}

// Accepted is the size of the final output set.
func (s Stats) Accepted() int {
	n := 0
	for _, c := range s.AcceptedByTier {
		n += c
	}
	return n
}
