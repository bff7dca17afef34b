package relevance

import (
	"testing"
	"time"
)

func testScorer() *Scorer {
	return NewScorer([]Category{
		{Name: "esg_reporting", Weight: 3, Phrases: []string{"esg report", "science based targets", "net zero"}},
		{Name: "sustainability", Weight: 1, Phrases: []string{"sustainability", "climate", "esg", "recycling"}},
	}, Negatives{Penalty: 3, Phrases: []string{"crypto", "stock market"}})
}

func TestScorePhraseAndTierBonus(t *testing.T) {
	s := testScorer()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	b := s.ScoreWithBreakdown(Input{
		Title:     "Brand X publishes ESG report with science based targets",
		TierBonus: 2,
		Published: now.Add(-1 * time.Hour),
		TimeKnown: true,
		Now:       now,
	})

	// "esg report" (3) + "science based targets" (3) + "esg" (1)
	if b.Keywords != 7 {
		t.Errorf("keyword component = %d, want 7", b.Keywords)
	}
	// three distinct hits
	if b.MultiSignal != bonusMultiStrong {
		t.Errorf("multi-signal = %d, want %d", b.MultiSignal, bonusMultiStrong)
	}
	if b.Tier != 2 {
		t.Errorf("tier bonus = %d, want 2", b.Tier)
	}
	// all three hits are in the title
	if b.Title != 3 {
		t.Errorf("title bonus = %d, want 3", b.Title)
	}
	if b.Recency != bonusSameDay {
		t.Errorf("recency = %d, want %d", b.Recency, bonusSameDay)
	}
	if b.Final < 1 {
		t.Errorf("expected positive score, got %d", b.Final)
	}
}

func TestScoreMultiSignalWeak(t *testing.T) {
	s := testScorer()
	b := s.ScoreWithBreakdown(Input{
		Title:       "Climate policy update",
		Description: "A recycling initiative",
	})
	if b.MultiSignal != bonusMultiWeak {
		t.Errorf("two distinct hits should earn the weak bonus, got %d", b.MultiSignal)
	}
}

func TestScoreNegativePenalty(t *testing.T) {
	s := testScorer()
	with := s.Score(Input{Title: "Climate summit and the stock market"})
	without := s.Score(Input{Title: "Climate summit"})
	if with >= without {
		t.Errorf("negative phrase should lower the score: %d >= %d", with, without)
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	s := testScorer()
	score := s.Score(Input{Title: "Crypto exchange hacked", Description: "Bitcoin and the stock market"})
	if score != 0 {
		t.Errorf("score should clamp at zero, got %d", score)
	}
}

func TestScoreNoMatchesNoTier(t *testing.T) {
	s := testScorer()
	if got := s.Score(Input{Title: "Local bakery opens"}); got != 0 {
		t.Errorf("irrelevant item should score 0, got %d", got)
	}
}

func TestRecencyRequiresPositiveBase(t *testing.T) {
	s := testScorer()
	now := time.Now()

	// Zero base: same-day publish must not create a score out of nothing.
	b := s.ScoreWithBreakdown(Input{
		Title:     "Local bakery opens",
		Published: now,
		TimeKnown: true,
		Now:       now,
	})
	if b.Recency != 0 || b.Final != 0 {
		t.Errorf("recency should not apply to zero base: recency=%d final=%d", b.Recency, b.Final)
	}
}

func TestRecencyUnknownTime(t *testing.T) {
	s := testScorer()
	b := s.ScoreWithBreakdown(Input{
		Title:     "Climate report published",
		TierBonus: 1,
		TimeKnown: false,
		Now:       time.Now(),
	})
	if b.Recency != 0 {
		t.Errorf("unknown publish time should get no recency bonus, got %d", b.Recency)
	}
	if b.Final == 0 {
		t.Error("item with unknown time should still score from its keywords")
	}
}

func TestRecencyBands(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want int
	}{
		{2 * time.Hour, bonusSameDay},
		{36 * time.Hour, bonusRecent},
		{60 * time.Hour, bonusRecent},
		{80 * time.Hour, 0},
		{-1 * time.Hour, bonusSameDay}, // future-dated
	}
	for _, tt := range tests {
		got := recencyBonus(now.Add(-tt.age), now)
		if got != tt.want {
			t.Errorf("recencyBonus(age=%v) = %d, want %d", tt.age, got, tt.want)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := testScorer()
	in := Input{
		Title:       "Net zero pledges and ESG report season",
		Description: "Sustainability teams prepare climate disclosures",
		TierBonus:   1,
	}
	first := s.Score(in)
	for i := 0; i < 10; i++ {
		if got := s.Score(in); got != first {
			t.Fatalf("score not deterministic: %d != %d", got, first)
		}
	}
}
