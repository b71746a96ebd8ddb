// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

// PostMetrics holds the raw engagement counters of a single post.
type PostMetrics struct {
	Likes       int64 `json:"likes" yaml:"likes"`
	Retweets    int64 `json:"retweets" yaml:"retweets"`
	Quotes      int64 `json:"quotes" yaml:"quotes"`
	Impressions int64 `json:"impressions" yaml:"impressions"`

	// SmartEngagement is a caller-supplied smart engagement figure.
	// When nil the engine estimates it from the audience profile.
	SmartEngagement *float64 `json:"smart_engagement,omitempty" yaml:"smart_engagement,omitempty"`
}

// Interactions returns the unweighted interaction count (likes + retweets + quotes).
// The sum is taken in float64 so counters near MaxInt64 cannot wrap negative.
func (m PostMetrics) Interactions() float64 {
	return float64(m.Likes) + float64(m.Retweets) + float64(m.Quotes)
}

// EngagementRate returns interactions divided by impressions.
// Returns 0 if impressions is not positive.
func (m PostMetrics) EngagementRate() float64 {
	if m.Impressions <= 0 {
		return 0
	}
	return m.Interactions() / float64(m.Impressions)
}

// sanitized clamps negative counters to zero. Impressions are left untouched
// so the invalid-impressions guard still sees the caller's value.
func (m PostMetrics) sanitized() PostMetrics {
	m.Likes = max(m.Likes, 0)
	m.Retweets = max(m.Retweets, 0)
	m.Quotes = max(m.Quotes, 0)
	return m
}

// AudienceProfile describes the account that published the post(s).
// SmartFollowers and VerifiedFollowers are subsets of Followers.
type AudienceProfile struct {
	Followers         int64 `json:"followers" yaml:"followers"`
	SmartFollowers    int64 `json:"smart_followers" yaml:"smart_followers"`
	VerifiedFollowers int64 `json:"verified_followers" yaml:"verified_followers"`
}

// SmartShare returns the share of smart followers among all followers.
// An unknown follower count falls back to DefaultSmartShare.
func (a AudienceProfile) SmartShare() float64 {
	if a.Followers <= 0 {
		return DefaultSmartShare
	}
	return float64(a.SmartFollowers) / float64(a.Followers)
}

// VerifiedRatio returns the verified follower ratio capped at 1.
func (a AudienceProfile) VerifiedRatio() float64 {
	return min(float64(a.VerifiedFollowers)/float64(max(a.Followers, 1)), 1.0)
}

func (a AudienceProfile) sanitized() AudienceProfile {
	a.Followers = max(a.Followers, 0)
	a.SmartFollowers = max(a.SmartFollowers, 0)
	a.VerifiedFollowers = max(a.VerifiedFollowers, 0)
	return a
}

// ScoreResult is the outcome of scoring one post.
type ScoreResult struct {
	EngagementRate        float64  `json:"engagement_rate"`         // Fraction, e.g. 0.017
	EngagementRatePercent float64  `json:"engagement_rate_percent"` // EngagementRate * 100
	SmartEngagement       float64  `json:"smart_engagement"`        // Before the 0.5*EffEng cap
	FinalScore            float64  `json:"final_score"`
	Disqualified          bool     `json:"disqualified"`
	Excluded              bool     `json:"excluded,omitempty"` // Batch only: below the impressions gate
	Advice                []string `json:"advice"`
}

// BatchResult is the outcome of scoring several posts of the same account.
type BatchResult struct {
	PerPost                    []ScoreResult `json:"per_post"`
	TotalEngagementRatePercent float64       `json:"total_engagement_rate_percent"`
	TotalScore                 float64       `json:"total_score"`
	EligiblePosts              int           `json:"eligible_posts"`
	Advice                     []string      `json:"advice"`
}
