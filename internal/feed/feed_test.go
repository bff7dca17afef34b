package feed

import (
	"context"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sustainthread/sustainnews/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Fetch: config.FetchConfig{MaxAge: "7d"},
		Tiers: map[string]config.TierPolicy{
			"dedicated": {Threshold: 1, MaxItemsPerFeed: 3, Bonus: 2},
		},
		SourceNames: []config.NameMapping{
			{Domain: "greenbiz.com", Name: "GreenBiz"},
		},
		Categories: map[string]config.Category{
			"topic": {Weight: 1, Phrases: []string{"climate"}},
		},
		Sources: []config.Source{
			{URL: "https://www.greenbiz.com/rss", Tier: "dedicated", Enabled: true},
		},
	}
}

func TestNormalizeEntry(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	pub := now.Add(-2 * time.Hour)

	item, err := normalizeEntry(&gofeed.Item{
		Title:           "Textile recycling scales up",
		Description:     "<p>New fiber-to-fiber plants open.</p>",
		Link:            "https://example.com/story",
		PublishedParsed: &pub,
	}, "GreenBiz", "dedicated", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Title != "Textile recycling scales up" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Description != "New fiber-to-fiber plants open." {
		t.Errorf("description not cleaned: %q", item.Description)
	}
	if !item.TimeKnown || !item.Published.Equal(pub) {
		t.Errorf("published = %v known=%v", item.Published, item.TimeKnown)
	}
	if item.Source != "GreenBiz" || item.Tier != "dedicated" {
		t.Errorf("source/tier = %q/%q", item.Source, item.Tier)
	}
}

func TestNormalizeEntryTitleFallback(t *testing.T) {
	now := time.Now()
	item, err := normalizeEntry(&gofeed.Item{Link: "https://example.com/x"}, "Src", "dedicated", now)
	if err != nil {
		t.Fatalf("entry with a link should normalize: %v", err)
	}
	if item.Title != PlaceholderTitle {
		t.Errorf("expected placeholder title, got %q", item.Title)
	}
}

func TestNormalizeEntryUpdatedFallback(t *testing.T) {
	now := time.Now()
	upd := now.Add(-3 * time.Hour)
	item, err := normalizeEntry(&gofeed.Item{Title: "T", Link: "https://e.com", UpdatedParsed: &upd}, "S", "dedicated", now)
	if err != nil {
		t.Fatal(err)
	}
	if !item.TimeKnown || !item.Published.Equal(upd) {
		t.Errorf("updated time should be used when published is absent")
	}
}

func TestNormalizeEntryUnknownTime(t *testing.T) {
	now := time.Now()
	item, err := normalizeEntry(&gofeed.Item{Title: "T", Link: "https://e.com"}, "S", "dedicated", now)
	if err != nil {
		t.Fatal(err)
	}
	if item.TimeKnown {
		t.Error("entry without structured time should be marked unknown")
	}
	if !item.Published.Equal(now) {
		t.Error("unknown publish time should fall back to the run time")
	}
}

func TestNormalizeEntryMalformed(t *testing.T) {
	now := time.Now()
	if _, err := normalizeEntry(&gofeed.Item{}, "S", "dedicated", now); err == nil {
		t.Error("entry with no title and no link should be rejected")
	}
	if _, err := normalizeEntry(nil, "S", "dedicated", now); err == nil {
		t.Error("nil entry should be rejected")
	}
}

func TestNormalizeEntryContentFallback(t *testing.T) {
	now := time.Now()
	item, err := normalizeEntry(&gofeed.Item{Title: "T", Link: "https://e.com", Content: "Body text."}, "S", "dedicated", now)
	if err != nil {
		t.Fatal(err)
	}
	if item.Description != "Body text." {
		t.Errorf("content should back fill empty description, got %q", item.Description)
	}
}

func TestItemsFromFeedCap(t *testing.T) {
	cfg := testConfig()
	now := time.Now()
	pub := now.Add(-time.Hour)

	var entries []*gofeed.Item
	for i := 0; i < 10; i++ {
		entries = append(entries, &gofeed.Item{
			Title:           "Story",
			Link:            "https://greenbiz.com/story",
			PublishedParsed: &pub,
		})
	}
	items, counts := itemsFromFeed(&gofeed.Feed{Items: entries}, cfg.Sources[0], cfg, now)
	if len(items) != 3 {
		t.Errorf("per-feed cap of 3 not applied: got %d items", len(items))
	}
	if counts.Considered != 3 {
		t.Errorf("considered = %d, want 3", counts.Considered)
	}
}

func TestItemsFromFeedWindow(t *testing.T) {
	cfg := testConfig()
	now := time.Now()
	fresh := now.Add(-time.Hour)
	stale := now.Add(-30 * 24 * time.Hour)

	items, counts := itemsFromFeed(&gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Fresh", Link: "https://e.com/1", PublishedParsed: &fresh},
		{Title: "Stale", Link: "https://e.com/2", PublishedParsed: &stale},
		{Title: "Undated", Link: "https://e.com/3"},
	}}, cfg.Sources[0], cfg, now)

	if len(items) != 2 {
		t.Fatalf("expected fresh + undated to survive, got %d", len(items))
	}
	if counts.Expired != 1 {
		t.Errorf("expired = %d, want 1", counts.Expired)
	}
	for _, it := range items {
		if it.Title == "Stale" {
			t.Error("stale item should be window-filtered")
		}
	}
}

func TestItemsFromFeedSkipsMalformed(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	items, counts := itemsFromFeed(&gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Good", Link: "https://e.com/1"},
		{}, // malformed
		{Title: "Also good", Link: "https://e.com/2"},
	}}, cfg.Sources[0], cfg, now)

	if len(items) != 2 {
		t.Errorf("malformed entry should be skipped, got %d items", len(items))
	}
	if counts.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", counts.Skipped)
	}
}

func TestItemsFromFeedResolvesName(t *testing.T) {
	cfg := testConfig()
	now := time.Now()

	items, _ := itemsFromFeed(&gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Story", Link: "https://greenbiz.com/x"},
	}}, cfg.Sources[0], cfg, now)
	if len(items) != 1 || items[0].Source != "GreenBiz" {
		t.Errorf("expected mapped source name, got %+v", items)
	}

	// Explicit source names skip the lookup
	src := cfg.Sources[0]
	src.Name = "Custom"
	items, _ = itemsFromFeed(&gofeed.Feed{Items: []*gofeed.Item{
		{Title: "Story", Link: "https://greenbiz.com/x"},
	}}, src, cfg, now)
	if items[0].Source != "Custom" {
		t.Errorf("explicit name should win, got %q", items[0].Source)
	}
}

func TestFetchAllCancelledContext(t *testing.T) {
	cfg := testConfig()
	cfg.Fetch.Workers = 1
	cfg.Sources = []config.Source{
		{URL: "https://www.greenbiz.com/rss", Tier: "dedicated", Enabled: true},
		{URL: "https://www.greenbiz.com/rss2", Tier: "dedicated", Enabled: true},
		{URL: "https://www.greenbiz.com/rss3", Tier: "dedicated", Enabled: true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan Result, 1)
	go func() {
		done <- FetchAll(ctx, cfg, time.Now())
	}()

	select {
	case result := <-done:
		if len(result.Items) != 0 {
			t.Errorf("cancelled run should fetch nothing, got %d items", len(result.Items))
		}
	case <-time.After(3 * time.Second):
		t.Fatal("FetchAll did not return after context cancellation")
	}
}
