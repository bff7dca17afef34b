package pipeline

import (
	"testing"

	"github.com/sustainthread/sustainnews/internal/feed"
)

func scored(title, url string) Scored {
	return Scored{Item: feed.Item{Title: title, URL: url}, Score: 1}
}

func TestDedupeTrackingParams(t *testing.T) {
	items := []Scored{
		scored("Same story", "https://e.com/story?utm_source=rss"),
		scored("Same story retitled", "https://e.com/story?utm_source=twitter"),
	}
	out, dropped := dedupe(items)
	if len(out) != 1 || dropped != 1 {
		t.Fatalf("URLs differing only by query should collapse: kept %d", len(out))
	}
	if out[0].Title != "Same story" {
		t.Error("first-seen item should win")
	}
}

func TestDedupeFragment(t *testing.T) {
	items := []Scored{
		scored("A", "https://e.com/story#section"),
		scored("B", "https://e.com/story"),
	}
	out, _ := dedupe(items)
	if len(out) != 1 {
		t.Error("URLs differing only by fragment should collapse")
	}
}

func TestDedupeTitleAlone(t *testing.T) {
	items := []Scored{
		scored("  Shared Headline ", "https://a.com/1"),
		scored("shared headline", "https://b.com/2"),
	}
	out, _ := dedupe(items)
	if len(out) != 1 {
		t.Error("normalized title match alone should collapse items")
	}
}

func TestDedupeDistinctSurvive(t *testing.T) {
	items := []Scored{
		scored("First story", "https://e.com/1"),
		scored("Second story", "https://e.com/2"),
		scored("Third story", "https://e.com/3"),
	}
	out, dropped := dedupe(items)
	if len(out) != 3 || dropped != 0 {
		t.Errorf("distinct items should all survive, kept %d", len(out))
	}
}

func TestDedupeEmptyURL(t *testing.T) {
	items := []Scored{
		scored("Story one", ""),
		scored("Story two", ""),
	}
	out, _ := dedupe(items)
	if len(out) != 2 {
		t.Error("empty URLs must not collide with each other")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://e.com/a?x=1", "https://e.com/a"},
		{"https://e.com/a#frag", "https://e.com/a"},
		{"https://e.com/a?x=1#frag", "https://e.com/a"},
		{"https://e.com/a", "https://e.com/a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeURL(tt.in); got != tt.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
