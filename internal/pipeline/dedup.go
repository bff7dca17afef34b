package pipeline

import "strings"

// dedupe collapses items that are the same story. Two items are duplicates
// when their normalized URLs match or their normalized titles match; either
// condition alone is enough, which deliberately over-collapses to catch
// syndication copies that only change a tracking parameter or tweak a
// headline. First seen in ingestion order wins.
func dedupe(items []Scored) ([]Scored, int) {
	seenURL := make(map[string]bool, len(items))
	seenTitle := make(map[string]bool, len(items))

	out := items[:0]
	dropped := 0
	for _, it := range items {
		u := normalizeURL(it.URL)
		title := normalizeTitle(it.Title)

		if (u != "" && seenURL[u]) || (title != "" && seenTitle[title]) {
			dropped++
			continue
		}
		if u != "" {
			seenURL[u] = true
		}
		if title != "" {
			seenTitle[title] = true
		}
		out = append(out, it)
	}
	return out, dropped
}

// normalizeURL strips the query string and fragment.
func normalizeURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return u
}

func normalizeTitle(t string) string {
	return strings.TrimSpace(strings.ToLower(t))
}
