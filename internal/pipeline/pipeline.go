package pipeline

import (
	"context"
	"time"

	"github.com/sustainthread/sustainnews/internal/config"
	"github.com/sustainthread/sustainnews/internal/feed"
	"github.com/sustainthread/sustainnews/internal/relevance"
)

// Scored is a candidate item plus its relevance score. Candidates are never
// mutated after normalization; scoring wraps them instead.
type Scored struct {
	feed.Item
	Score int
}

// Result is the outcome of one run: the bounded, ordered output set plus
// observability counters and any per-feed errors.
type Result struct {
	Items  []Scored
	Stats  Stats
	Errors []error
	RanAt  time.Time
}

// Pipeline wires the run together: fan-out fetch, rejection, scoring, then a
// single-threaded reduce of dedup, rank and select. The fetch function and
// the clock are injectable for tests; a run is a pure function of entries,
// configuration and "now".
type Pipeline struct {
	cfg    *config.Config
	filter *relevance.Filter
	scorer *relevance.Scorer
	fetch  func(ctx context.Context, cfg *config.Config, now time.Time) feed.Result
	now    func() time.Time
}

func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		filter: relevance.NewFilter(rulesFromConfig(cfg.Rules)),
		scorer: relevance.NewScorer(categoriesFromConfig(cfg.Categories), relevance.Negatives{
			Penalty: cfg.Negatives.Penalty,
			Phrases: cfg.Negatives.Phrases,
		}),
		fetch: feed.FetchAll,
		now:   time.Now,
	}
}

// Run executes one full pipeline pass.
func (p *Pipeline) Run(ctx context.Context) Result {
	now := p.now()
	fetched := p.fetch(ctx, p.cfg, now)

	result := p.Process(fetched.Items, now)
	result.Errors = fetched.Errors
	result.Stats.FeedErrors = len(fetched.Errors)
	result.Stats.Fetched = fetched.Counts.Considered
	result.Stats.SkippedEntries = fetched.Counts.Skipped
	result.Stats.Expired = fetched.Counts.Expired
	return result
}

// Process is the reduce phase: reject, score, dedup, rank, select. It is
// pure and order-sensitive; the seen-sets live and die inside the call.
func (p *Pipeline) Process(items []feed.Item, now time.Time) Result {
	stats := newStats()

	working := make([]Scored, 0, len(items))
	for _, it := range items {
		if rejected, rule := p.filter.Reject(it.Title, it.Description); rejected {
			stats.RejectedByRule++
			stats.RuleHits[rule]++
			continue
		}
		score := p.scorer.Score(relevance.Input{
			Title:       it.Title,
			Description: it.Description,
			TierBonus:   p.cfg.Policy(it.Tier).Bonus,
			Published:   it.Published,
			TimeKnown:   it.TimeKnown,
			Now:         now,
		})
		working = append(working, Scored{Item: it, Score: score})
	}

	working, duplicates := dedupe(working)
	stats.Duplicates = duplicates

	for _, s := range working {
		stats.Histogram[s.Score]++
	}

	sortByRank(working)
	selected, belowThreshold := selectItems(working, p.cfg)
	stats.RejectedByScore = belowThreshold

	for _, s := range selected {
		stats.AcceptedByTier[s.Tier]++
	}

	return Result{Items: selected, Stats: stats, RanAt: now}
}

func rulesFromConfig(rules []config.Rule) []relevance.Rule {
	out := make([]relevance.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, relevance.Rule{
			Name:           r.Name,
			AnyOf:          r.AnyOf,
			MainTerms:      r.MainTerms,
			ForbiddenTerms: r.ForbiddenTerms,
		})
	}
	return out
}

func categoriesFromConfig(categories map[string]config.Category) []relevance.Category {
	out := make([]relevance.Category, 0, len(categories))
	for name, c := range categories {
		out = append(out, relevance.Category{Name: name, Weight: c.Weight, Phrases: c.Phrases})
	}
	return out
}
