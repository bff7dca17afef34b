package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sustainthread/sustainnews/internal/pipeline"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"})

	reportLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"})
)

// renderReport formats the run's counters for the console. Diagnostic only;
// the pipeline result is already final by the time this runs.
func renderReport(stats pipeline.Stats) string {
	var b strings.Builder

	b.WriteString(reportTitleStyle.Render("Run report"))
	b.WriteString("\n")

	line := func(label string, value interface{}) {
		b.WriteString(fmt.Sprintf("  %s %v\n", reportLabelStyle.Render(label+":"), value))
	}

	line("entries considered", stats.Fetched)
	line("feed errors", stats.FeedErrors)
	line("malformed entries skipped", stats.SkippedEntries)
	line("outside time window", stats.Expired)
	line("rejected by rule", stats.RejectedByRule)
	line("below tier threshold", stats.RejectedByScore)
	line("duplicates collapsed", stats.Duplicates)
	line("accepted", stats.Accepted())

	if len(stats.RuleHits) > 0 {
		b.WriteString("  " + reportLabelStyle.Render("rule hits:") + "\n")
		for _, name := range sortedKeys(stats.RuleHits) {
			b.WriteString(fmt.Sprintf("    %-16s %d\n", name, stats.RuleHits[name]))
		}
	}

	if len(stats.AcceptedByTier) > 0 {
		b.WriteString("  " + reportLabelStyle.Render("accepted per tier:") + "\n")
		for _, tier := range sortedKeys(stats.AcceptedByTier) {
			b.WriteString(fmt.Sprintf("    %-16s %d\n", tier, stats.AcceptedByTier[tier]))
		}
	}

	if len(stats.Histogram) > 0 {
		b.WriteString("  " + reportLabelStyle.Render("score distribution:") + "\n")
		scores := make([]int, 0, len(stats.Histogram))
		for s := range stats.Histogram {
			scores = append(scores, s)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(scores)))
		for _, s := range scores {
			b.WriteString(fmt.Sprintf("    score %-3d %s\n", s, strings.Repeat("▪", stats.Histogram[s])))
		}
	}

	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
