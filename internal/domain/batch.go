package domain

// ScoreBatch scores several posts of the same account.
//
// Each post runs the single-post pipeline with the batch post-count multiplier
// 1 + 0.02*min(len(posts), 20). Posts below 1,000 impressions are excluded:
// they get a zero result with eligibility advice and contribute nothing to
// the totals.
//
//	Total ER    = (Σlikes + Σretweets + Σquotes) / Σimpressions * 100  (eligible posts only)
//	Total Score = Σ finalScore                                          (eligible posts only)
func ScoreBatch(posts []PostMetrics, audience AudienceProfile) BatchResult {
	postMult := BatchPostMultiplier(len(posts))
	result := BatchResult{
		PerPost: make([]ScoreResult, 0, len(posts)),
	}

	var interactions, impressions float64
	for _, post := range posts {
		if post.Impressions < minImpressions {
			result.PerPost = append(result.PerPost, ScoreResult{
				Excluded: true,
				Advice:   []string{AdviceLowImpressions},
			})
			continue
		}

		scored := scoreWith(post, audience, postMult)
		result.PerPost = append(result.PerPost, scored)

		interactions += post.sanitized().Interactions()
		impressions += float64(post.Impressions)
		result.TotalScore += scored.FinalScore
		result.EligiblePosts++
	}

	if impressions > 0 {
		result.TotalEngagementRatePercent = interactions / impressions * 100
	}
	result.Advice = []string{totalERAdvice(result.TotalEngagementRatePercent)}

	return result
}
