package domain

import (
	"math"
	"slices"
	"testing"
)

func TestScoreBatch_MixedEligibility(t *testing.T) {
	audience := AudienceProfile{Followers: 5000, SmartFollowers: 800, VerifiedFollowers: 600}
	posts := []PostMetrics{
		{Likes: 500, Retweets: 120, Quotes: 40, Impressions: 20000},
		{Likes: 10, Retweets: 1, Quotes: 0, Impressions: 500}, // excluded
		{Likes: 2000, Retweets: 400, Quotes: 150, Impressions: 150000},
	}

	got := ScoreBatch(posts, audience)

	if len(got.PerPost) != len(posts) {
		t.Fatalf("len(PerPost) = %d, want %d", len(got.PerPost), len(posts))
	}
	if got.EligiblePosts != 2 {
		t.Errorf("EligiblePosts = %d, want 2", got.EligiblePosts)
	}

	// postMult = 1 + 0.02*3 = 1.06
	expectedScores := []float64{5432.755611494788, 0, 108943.84675019696}
	for i, want := range expectedScores {
		if math.Abs(got.PerPost[i].FinalScore-want) > 1e-6 {
			t.Errorf("PerPost[%d].FinalScore = %v, want %v", i, got.PerPost[i].FinalScore, want)
		}
	}

	excluded := got.PerPost[1]
	if !excluded.Excluded || excluded.EngagementRatePercent != 0 {
		t.Errorf("expected excluded zero result, got %+v", excluded)
	}
	if !slices.Equal(excluded.Advice, []string{AdviceLowImpressions}) {
		t.Errorf("excluded Advice = %v", excluded.Advice)
	}

	// (660 + 2550) / 170000 * 100, the 500-impression post is left out
	if math.Abs(got.TotalEngagementRatePercent-1.8882352941176472) > floatTolerance {
		t.Errorf("TotalEngagementRatePercent = %v, want 1.888...", got.TotalEngagementRatePercent)
	}
	if math.Abs(got.TotalScore-114376.60236169175) > 1e-6 {
		t.Errorf("TotalScore = %v, want 114376.60236169175", got.TotalScore)
	}
	if !slices.Equal(got.Advice, []string{AdviceTotalERLow}) {
		t.Errorf("Advice = %v, want [%q]", got.Advice, AdviceTotalERLow)
	}
}

func TestScoreBatch_SinglePostMatchesPostER(t *testing.T) {
	audience := AudienceProfile{Followers: 1000, SmartFollowers: 100, VerifiedFollowers: 50}
	post := PostMetrics{Likes: 10, Retweets: 5, Quotes: 2, Impressions: 1000}

	batch := ScoreBatch([]PostMetrics{post}, audience)
	single := ScorePost(post, audience)

	if batch.TotalEngagementRatePercent != single.EngagementRatePercent {
		t.Errorf("batch ER = %v, post ER = %v", batch.TotalEngagementRatePercent, single.EngagementRatePercent)
	}
	if batch.PerPost[0].EngagementRatePercent != single.EngagementRatePercent {
		t.Errorf("per-post ER = %v, post ER = %v", batch.PerPost[0].EngagementRatePercent, single.EngagementRatePercent)
	}
	// 1 + 0.02*1 equals the single-post multiplier
	if math.Abs(batch.TotalScore-single.FinalScore) > 1e-9 {
		t.Errorf("batch TotalScore = %v, single FinalScore = %v", batch.TotalScore, single.FinalScore)
	}
}

func TestScoreBatch_Empty(t *testing.T) {
	for _, posts := range [][]PostMetrics{nil, {}} {
		got := ScoreBatch(posts, AudienceProfile{Followers: 100})

		if got.PerPost == nil || len(got.PerPost) != 0 {
			t.Errorf("PerPost = %v, want empty non-nil slice", got.PerPost)
		}
		if got.TotalEngagementRatePercent != 0 || got.TotalScore != 0 || got.EligiblePosts != 0 {
			t.Errorf("expected zero totals, got %+v", got)
		}
		if !slices.Equal(got.Advice, []string{AdviceTotalERLow}) {
			t.Errorf("Advice = %v", got.Advice)
		}
	}
}

func TestScoreBatch_AllExcluded(t *testing.T) {
	posts := []PostMetrics{
		{Likes: 10, Impressions: 999},
		{Likes: 5, Impressions: 0},
		{Likes: 5, Impressions: -10},
	}

	got := ScoreBatch(posts, AudienceProfile{Followers: 100})

	for i, p := range got.PerPost {
		if !p.Excluded || p.FinalScore != 0 {
			t.Errorf("PerPost[%d] = %+v, want excluded", i, p)
		}
	}
	if got.TotalEngagementRatePercent != 0 || got.TotalScore != 0 {
		t.Errorf("expected zero totals, got ER=%v score=%v", got.TotalEngagementRatePercent, got.TotalScore)
	}
}

func TestScoreBatch_TotalERAdvice(t *testing.T) {
	audience := AudienceProfile{Followers: 100000, SmartFollowers: 40000, VerifiedFollowers: 20000}

	tests := []struct {
		name     string
		post     PostMetrics
		expected string
	}{
		{"high", PostMetrics{Likes: 450, Retweets: 300, Quotes: 150, Impressions: 10000}, AdviceTotalERHigh},
		{"low", PostMetrics{Likes: 150, Retweets: 50, Quotes: 10, Impressions: 10000}, AdviceTotalERLow},
		{"safe", PostMetrics{Likes: 250, Retweets: 100, Quotes: 50, Impressions: 10000}, AdviceTotalERSafe},
		{"exactly 8% is safe", PostMetrics{Likes: 500, Retweets: 200, Quotes: 100, Impressions: 10000}, AdviceTotalERSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreBatch([]PostMetrics{tt.post}, audience)
			if !slices.Equal(got.Advice, []string{tt.expected}) {
				t.Errorf("Advice = %v, want [%q]", got.Advice, tt.expected)
			}
		})
	}
}

func TestScoreBatch_PostMultiplierSaturates(t *testing.T) {
	audience := AudienceProfile{Followers: 5000, SmartFollowers: 800, VerifiedFollowers: 600}
	post := PostMetrics{Likes: 500, Retweets: 120, Quotes: 40, Impressions: 20000}

	twenty := ScoreBatch(repeatPosts(post, 20), audience)
	thirty := ScoreBatch(repeatPosts(post, 30), audience)

	if twenty.PerPost[0].FinalScore != thirty.PerPost[0].FinalScore {
		t.Errorf("per-post score changed past 20 posts: %v vs %v",
			twenty.PerPost[0].FinalScore, thirty.PerPost[0].FinalScore)
	}

	two := ScoreBatch(repeatPosts(post, 2), audience)
	if two.PerPost[0].FinalScore >= twenty.PerPost[0].FinalScore {
		t.Errorf("more posts should raise the multiplier: %v >= %v",
			two.PerPost[0].FinalScore, twenty.PerPost[0].FinalScore)
	}
}

func TestScoreBatch_LargeCountersDoNotOverflow(t *testing.T) {
	posts := []PostMetrics{
		{Likes: math.MaxInt64, Retweets: 1, Impressions: math.MaxInt64},
		{Likes: math.MaxInt64, Quotes: 1, Impressions: math.MaxInt64},
	}

	got := ScoreBatch(posts, AudienceProfile{Followers: 10})

	if math.Abs(got.TotalEngagementRatePercent-100) > 1e-6 {
		t.Errorf("TotalEngagementRatePercent = %v, want 100", got.TotalEngagementRatePercent)
	}
	if !slices.Equal(got.Advice, []string{AdviceTotalERHigh}) {
		t.Errorf("Advice = %v, want [%q]", got.Advice, AdviceTotalERHigh)
	}
	if got.EligiblePosts != 2 {
		t.Errorf("EligiblePosts = %d, want 2", got.EligiblePosts)
	}
}

// repeatPosts returns n copies of p (equivalent of slices.Repeat, which
// needs Go 1.23).
func repeatPosts(p PostMetrics, n int) []PostMetrics {
	posts := make([]PostMetrics, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, p)
	}
	return posts
}
