package relevance

import (
	"sort"
	"strings"
	"time"
)

// Category is a named group of phrases sharing one weight. Multi-word phrase
// categories are configured with higher weights than single-word ones.
type Category struct {
	Name    string
	Weight  int
	Phrases []string
}

// Negatives are soft warning phrases. Each match subtracts Penalty; unlike a
// rejection rule they never exclude an item on their own.
type Negatives struct {
	Penalty int
	Phrases []string
}

// Input holds everything needed to score one item. Now is injected so a run
// is a pure function of its inputs.
type Input struct {
	Title       string
	Description string
	TierBonus   int
	Published   time.Time
	TimeKnown   bool
	Now         time.Time
}

// Breakdown shows how each component contributed to the final score.
type Breakdown struct {
	Keywords    int
	MultiSignal int
	Negative    int
	Tier        int
	Title       int
	Recency     int
	Final       int
}

const (
	bonusMultiStrong = 2 // three or more distinct signals
	bonusMultiWeak   = 1 // exactly two
	bonusTitleMatch  = 1 // per keyword hit inside the title
	bonusSameDay     = 2
	bonusRecent      = 1
	recentWindowDays = 2
)

// Scorer computes integer relevance scores from static keyword tables.
type Scorer struct {
	categories []Category
	negatives  Negatives
}

// NewScorer copies the category list and sorts it by name so breakdowns and
// histograms are deterministic regardless of map iteration order upstream.
func NewScorer(categories []Category, negatives Negatives) *Scorer {
	cats := make([]Category, len(categories))
	copy(cats, categories)
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return &Scorer{categories: cats, negatives: negatives}
}

// Score computes the relevance score for an item. Never negative.
func (s *Scorer) Score(in Input) int {
	return s.ScoreWithBreakdown(in).Final
}

// ScoreWithBreakdown computes the score with per-component detail.
func (s *Scorer) ScoreWithBreakdown(in Input) Breakdown {
	title := strings.ToLower(in.Title)
	content := title + " " + strings.ToLower(in.Description)

	var b Breakdown
	distinct := map[string]bool{}

	for _, cat := range s.categories {
		for _, phrase := range cat.Phrases {
			p := strings.ToLower(phrase)
			if p == "" || !strings.Contains(content, p) {
				continue
			}
			b.Keywords += cat.Weight
			distinct[p] = true
			if strings.Contains(title, p) {
				b.Title += bonusTitleMatch
			}
		}
	}

	switch {
	case len(distinct) >= 3:
		b.MultiSignal = bonusMultiStrong
	case len(distinct) == 2:
		b.MultiSignal = bonusMultiWeak
	}

	for _, phrase := range s.negatives.Phrases {
		if phrase != "" && strings.Contains(content, strings.ToLower(phrase)) {
			b.Negative -= s.negatives.Penalty
		}
	}

	b.Tier = in.TierBonus

	total := b.Keywords + b.MultiSignal + b.Negative + b.Tier + b.Title

	// Recency amplifies relevance, it never creates it: the bonus only
	// applies when the score is already positive, and unknown publish
	// times get nothing.
	if total > 0 && in.TimeKnown {
		b.Recency = recencyBonus(in.Published, in.Now)
		total += b.Recency
	}

	if total < 0 {
		total = 0
	}
	b.Final = total
	return b
}

func recencyBonus(published, now time.Time) int {
	age := now.Sub(published)
	if age < 0 {
		age = 0 // future-dated items count as fresh
	}
	days := int(age.Hours() / 24)
	switch {
	case days == 0:
		return bonusSameDay
	case days <= recentWindowDays:
		return bonusRecent
	default:
		return 0
	}
}
