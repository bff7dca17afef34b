package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/sustainthread/sustainnews/internal/clean"
	"github.com/sustainthread/sustainnews/internal/config"
)

// PlaceholderTitle substitutes for entries that arrive without one.
const PlaceholderTitle = "No title"

// Item is one normalized feed entry, ready for rejection and scoring.
// Publish times are used exactly as the feed supplies them, with no timezone
// normalization. When a feed gives no structured time, Published is set to
// the run time and TimeKnown is false so scoring and window filtering can
// tell the difference.
type Item struct {
	Title       string
	Description string
	URL         string
	Source      string
	Tier        string
	Published   time.Time
	TimeKnown   bool
}

// Counts tracks per-feed entry accounting.
type Counts struct {
	Considered int // entries inside the per-feed cap
	Skipped    int // malformed entries dropped
	Expired    int // entries older than the max-age window
}

// Fetcher retrieves and normalizes one source's entries.
type Fetcher interface {
	Fetch(ctx context.Context, src config.Source) ([]Item, Counts, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
	cfg    *config.Config
	now    time.Time
}

func NewRSSFetcher(cfg *config.Config, now time.Time) *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser(), cfg: cfg, now: now}
}

func (f *RSSFetcher) Fetch(ctx context.Context, src config.Source) ([]Item, Counts, error) {
	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, Counts{}, fmt.Errorf("fetching %s: %w", src.URL, err)
	}
	items, counts := itemsFromFeed(parsed, src, f.cfg, f.now)
	return items, counts, nil
}

// itemsFromFeed applies the per-feed cap in the feed's own entry order, then
// normalizes each entry. A malformed entry is skipped, never fatal for its
// siblings.
func itemsFromFeed(parsed *gofeed.Feed, src config.Source, cfg *config.Config, now time.Time) ([]Item, Counts) {
	policy := cfg.Policy(src.Tier)
	name := src.Name
	if name == "" {
		name = cfg.ResolveSourceName(src.URL)
	}
	maxAge := cfg.Fetch.MaxAgeDuration()
	cutoff := now.Add(-maxAge)

	entries := parsed.Items
	if len(entries) > policy.MaxItemsPerFeed {
		entries = entries[:policy.MaxItemsPerFeed]
	}

	var (
		items  []Item
		counts Counts
	)
	counts.Considered = len(entries)
	for _, raw := range entries {
		item, err := normalizeEntry(raw, name, src.Tier, now)
		if err != nil {
			counts.Skipped++
			continue
		}
		if item.TimeKnown && item.Published.Before(cutoff) {
			counts.Expired++
			continue
		}
		items = append(items, item)
	}
	return items, counts
}

var errMalformedEntry = errors.New("entry has neither title nor link")

func normalizeEntry(raw *gofeed.Item, sourceName, tier string, now time.Time) (Item, error) {
	if raw == nil || (raw.Title == "" && raw.Link == "") {
		return Item{}, errMalformedEntry
	}

	title := raw.Title
	if title == "" {
		title = PlaceholderTitle
	}

	desc := raw.Description
	if desc == "" {
		desc = raw.Content
	}

	item := Item{
		Title:       title,
		Description: clean.Description(desc),
		URL:         raw.Link,
		Source:      sourceName,
		Tier:        tier,
		Published:   now,
	}

	if raw.PublishedParsed != nil {
		item.Published = *raw.PublishedParsed
		item.TimeKnown = true
	} else if raw.UpdatedParsed != nil {
		item.Published = *raw.UpdatedParsed
		item.TimeKnown = true
	}

	return item, nil
}

// Result aggregates all feeds of a run.
type Result struct {
	Items  []Item
	Errors []error
	Counts Counts
}

// FetchAll fans out over the enabled sources with a bounded worker pool. A
// shared limiter spaces requests out so the run stays a polite client of
// third-party servers. One failing feed contributes an error and nothing
// else; the run continues.
func FetchAll(ctx context.Context, cfg *config.Config, now time.Time) Result {
	sources := cfg.EnabledSources()
	limiter := rate.NewLimiter(rate.Every(cfg.Fetch.IntervalDuration()), 1)
	timeout := cfg.Fetch.TimeoutDuration()

	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)

	jobs := make(chan config.Source)
	workers := cfg.Fetch.WorkerCount()
	if workers > len(sources) {
		workers = len(sources)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetcher := NewRSSFetcher(cfg, now)
			for src := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				fctx, cancel := context.WithTimeout(ctx, timeout)
				items, counts, err := fetcher.Fetch(fctx, src)
				cancel()

				mu.Lock()
				if err != nil {
					result.Errors = append(result.Errors, err)
				} else {
					result.Items = append(result.Items, items...)
					result.Counts.Considered += counts.Considered
					result.Counts.Skipped += counts.Skipped
					result.Counts.Expired += counts.Expired
				}
				mu.Unlock()
			}
		}()
	}

	// Workers stop pulling jobs once the context is cancelled, so the
	// send must also watch the context or it blocks forever.
send:
	for _, src := range sources {
		select {
		case jobs <- src:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()

	return result
}
