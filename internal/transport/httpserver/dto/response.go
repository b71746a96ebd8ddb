package dto

import (
	"engagement-score-service/internal/domain"
)

// ScoreResponse represents a scored post. Numbers are rounded to two decimals.
type ScoreResponse struct {
	EngagementRatePercent float64  `json:"engagement_rate_percent"`
	SmartEngagement       float64  `json:"smart_engagement"`
	FinalScore            float64  `json:"final_score"`
	Disqualified          bool     `json:"disqualified"`
	Excluded              bool     `json:"excluded,omitempty"`
	Advice                []string `json:"advice"`
}

// FromScoreResult converts domain.ScoreResult to ScoreResponse.
func FromScoreResult(r domain.ScoreResult) ScoreResponse {
	return ScoreResponse{
		EngagementRatePercent: domain.RoundTo2Decimals(r.EngagementRatePercent),
		SmartEngagement:       domain.RoundTo2Decimals(r.SmartEngagement),
		FinalScore:            domain.RoundTo2Decimals(r.FinalScore),
		Disqualified:          r.Disqualified,
		Excluded:              r.Excluded,
		Advice:                r.Advice,
	}
}

// BatchResponse represents a scored batch.
type BatchResponse struct {
	PerPost                    []ScoreResponse `json:"per_post"`
	TotalEngagementRatePercent float64         `json:"total_engagement_rate_percent"`
	TotalScore                 float64         `json:"total_score"`
	EligiblePosts              int             `json:"eligible_posts"`
	Advice                     []string        `json:"advice"`
}

// FromBatchResult converts domain.BatchResult to BatchResponse.
func FromBatchResult(r domain.BatchResult) BatchResponse {
	perPost := make([]ScoreResponse, len(r.PerPost))
	for i, p := range r.PerPost {
		perPost[i] = FromScoreResult(p)
	}

	return BatchResponse{
		PerPost:                    perPost,
		TotalEngagementRatePercent: domain.RoundTo2Decimals(r.TotalEngagementRatePercent),
		TotalScore:                 domain.RoundTo2Decimals(r.TotalScore),
		EligiblePosts:              r.EligiblePosts,
		Advice:                     r.Advice,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
