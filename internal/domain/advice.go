package domain

// Advice messages returned with score results.
const (
	AdviceInvalidImpressions = "invalid impressions"

	// ER band (exactly one per post)
	AdviceERHigh = "ER high, possibly capped or suspected inauthentic engagement"
	AdviceERLow  = "ER low, increase organic reposts and quotes"
	AdviceERSafe = "ER within safe range"

	// Audience trust
	AdviceLowSmartShare    = "Low smart follower share, grow a higher quality audience"
	AdviceVerifiedRatioOK  = "Good verified follower ratio, boosts trust"
	AdviceVerifiedRatioLow = "Few verified followers, trust grows slower"

	// Eligibility and anti-gaming
	AdviceLowImpressions = "Impressions below 1,000, post not eligible"
	AdviceReachSpike     = "Reach exceeds 50x followers, possible abnormal spike"
	AdviceLikeHeavy      = "Many likes but few reposts or quotes, engagement looks unnatural"
	AdviceLikeRateDQ     = "Like rate above 50%, disqualified"
	AdviceAllLikes       = "Only likes, no reposts or quotes, trust reduced"

	// Batch totals
	AdviceTotalERHigh = "Total ER high, consider growing organic engagement"
	AdviceTotalERLow  = "Total ER low, increase organic reposts and quotes"
	AdviceTotalERSafe = "Total ER within safe range"
)

// erBandAdvice picks the single ER band message for a post.
func erBandAdvice(er float64) string {
	switch {
	case er > erHighAdvice:
		return AdviceERHigh
	case er < erLowAdvice:
		return AdviceERLow
	default:
		return AdviceERSafe
	}
}

// trustAdvice returns the audience trust messages in evaluation order.
func trustAdvice(audience AudienceProfile) []string {
	var advice []string
	if audience.SmartShare() < lowSmartShare {
		advice = append(advice, AdviceLowSmartShare)
	}
	if audience.VerifiedRatio() > goodVerifiedRatio {
		advice = append(advice, AdviceVerifiedRatioOK)
	} else {
		advice = append(advice, AdviceVerifiedRatioLow)
	}
	return advice
}

// totalERAdvice picks the batch-level message. totalERPercent is a percentage.
func totalERAdvice(totalERPercent float64) string {
	switch {
	case totalERPercent > totalERHighPercent:
		return AdviceTotalERHigh
	case totalERPercent < totalERLowPercent:
		return AdviceTotalERLow
	default:
		return AdviceTotalERSafe
	}
}
