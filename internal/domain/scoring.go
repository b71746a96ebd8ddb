// Package domain contains the core business logic and entities.
package domain

import "math"

// Scoring constants. The weights and thresholds are hand-tuned and must stay
// exactly as they are to keep scores comparable across releases.
const (
	reachSaturation = 100000 // impressions at which reach maturity reaches 1

	retweetWeight  = 3.0
	quoteWeightMin = 4.0
	quoteWeightSRM = 2.0

	smartFollowerCap = 3.0
	verifiedBoostMax = 0.25

	erCapBase = 0.01
	erCapSRM  = 0.04

	smartEngagementCap = 0.5
	reachEfficiencyCap = 2.0

	singlePostMultiplier = 1.02
	batchPostBonus       = 0.02
	batchPostCap         = 20

	erMultBase = 0.9
	erMultGain = 2.0
	erMultCap  = 0.05

	smartFollowerWeight = 500.0
	impressionWeight    = 10.0
	engagementWeight    = 0.7
	smartEngageWeight   = 150.0
	reachEffWeight      = 120.0
	srmExponent         = 1.5

	// Guards
	erDisqualify       = 0.20
	erSuspicious       = 0.10
	suspiciousReach    = 50000
	suspiciousPenalty  = 0.3
	erDead             = 0.001
	deadPenalty        = 0.5
	minImpressions     = 1000
	lowReachPenalty    = 0.5
	spikeFollowers     = 2000
	spikeReachFactor   = 50
	spikePenalty       = 0.6
	minPropagation     = 0.01
	likeHeavyRate      = 0.05
	likeHeavyPenalty   = 0.7
	likeRateDisqualify = 0.5
	allLikesMinLikes   = 50
	allLikesPenalty    = 0.8

	// Advice thresholds
	erHighAdvice       = 0.08
	erLowAdvice        = 0.03
	totalERHighPercent = 8.0
	totalERLowPercent  = 3.0
	lowSmartShare      = 0.2
	goodVerifiedRatio  = 0.1
)

// DefaultSmartShare is the smart follower share assumed when the follower
// count is unknown (zero or negative). It keeps the low-quality audience
// advice from firing for accounts that did not report followers.
const DefaultSmartShare = 0.7

// ScorePost computes the engagement rate, final score and advice for a single post.
//
// Formula:
//
//	SRM        = min(1, impressions/100000)
//	ENG        = likes + 3*retweets + (4 + 2*SRM)*quotes
//	ER         = (likes + retweets + quotes) / impressions
//	SF         = min(log10(smartFollowers + 1), 3)
//	VF         = min(verifiedFollowers / max(followers, 1), 1)
//	EffEng     = min(max(ENG, ER*impressions), impressions*(0.01 + 0.04*SRM))
//	SENG       = min(smartEngagement, 0.5*EffEng)
//	QE         = min(ln(1 + impressions/max(followers, 1)), 2) * SRM
//	base       = 500*SF + 10*sqrt(impressions) + (0.7*ENG*Clamp + 150*SENG)*SRM^1.5 + 120*QE
//	finalScore = base * (0.9 + 2*min(ER, 0.05)) * 1.02 * (1 + 0.25*VF)
//
// Guards and anti-gaming penalties are then applied in order. The function is
// total: a non-positive impression count yields a zero result with advice
// instead of an error.
func ScorePost(metrics PostMetrics, audience AudienceProfile) ScoreResult {
	return scoreWith(metrics, audience, singlePostMultiplier)
}

// EstimateSmartEngagement attributes raw engagement to smart followers in
// proportion to their share of the audience. Returns 0 if followers <= 0.
func EstimateSmartEngagement(eng float64, smartFollowers, followers int64) float64 {
	if followers <= 0 {
		return 0
	}
	return eng * (float64(smartFollowers) / float64(followers))
}

// ReachMaturity returns the saturating reach multiplier SRM for an impression count.
func ReachMaturity(impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return math.Min(1, float64(impressions)/reachSaturation)
}

// BatchPostMultiplier returns the post-count multiplier used when scoring a batch.
// Extra credit stops growing after 20 posts.
func BatchPostMultiplier(postCount int) float64 {
	return 1 + batchPostBonus*float64(min(max(postCount, 0), batchPostCap))
}

// scoreWith is the single scoring pipeline shared by single-post and batch scoring.
func scoreWith(metrics PostMetrics, audience AudienceProfile, postMult float64) ScoreResult {
	if metrics.Impressions <= 0 {
		return ScoreResult{Advice: []string{AdviceInvalidImpressions}}
	}

	m := metrics.sanitized()
	a := audience.sanitized()

	impressions := float64(m.Impressions)
	likes := float64(m.Likes)
	retweets := float64(m.Retweets)
	quotes := float64(m.Quotes)

	srm := ReachMaturity(m.Impressions)
	quoteWeight := quoteWeightMin + quoteWeightSRM*srm
	eng := likes + retweetWeight*retweets + quoteWeight*quotes
	er := m.EngagementRate()

	sf := math.Min(math.Log10(float64(a.SmartFollowers)+1), smartFollowerCap)
	vf := a.VerifiedRatio()
	imp := math.Sqrt(impressions)

	engObs := math.Max(eng, er*impressions)
	erCap := erCapBase + erCapSRM*srm
	effEng := math.Min(engObs, impressions*erCap)
	clamp := 1.0
	if engObs > 0 {
		clamp = effEng / engObs
	}

	smartEngagement := EstimateSmartEngagement(eng, a.SmartFollowers, a.Followers)
	if m.SmartEngagement != nil {
		smartEngagement = math.Max(*m.SmartEngagement, 0)
	}
	seng := math.Min(smartEngagement, smartEngagementCap*effEng)

	qe := math.Min(math.Log(1+impressions/float64(max(a.Followers, 1))), reachEfficiencyCap) * srm
	verifiedBoost := 1 + verifiedBoostMax*vf
	erMult := erMultBase + erMultGain*math.Min(er, erMultCap)

	engageBlock := (engagementWeight*eng*clamp + smartEngageWeight*seng) * math.Pow(srm, srmExponent)
	baseScore := smartFollowerWeight*sf + impressionWeight*imp + engageBlock + reachEffWeight*qe
	finalScore := baseScore * erMult * postMult * verifiedBoost

	disqualified := false
	if er > erDisqualify {
		finalScore = 0
		disqualified = true
	}
	if er > erSuspicious && m.Impressions < suspiciousReach {
		finalScore *= suspiciousPenalty
	}
	if er < erDead {
		finalScore *= deadPenalty
	}

	// Anti-gaming & eligibility
	var issues []string
	propRatio := (retweets + quotes) / impressions
	likeRate := likes / impressions

	if m.Impressions < minImpressions {
		issues = append(issues, AdviceLowImpressions)
		finalScore *= lowReachPenalty
	}
	if a.Followers < spikeFollowers && m.Impressions > a.Followers*spikeReachFactor {
		issues = append(issues, AdviceReachSpike)
		finalScore *= spikePenalty
	}
	if propRatio < minPropagation && likeRate > likeHeavyRate {
		issues = append(issues, AdviceLikeHeavy)
		finalScore *= likeHeavyPenalty
	}
	if likeRate > likeRateDisqualify {
		issues = append(issues, AdviceLikeRateDQ)
		finalScore = 0
		disqualified = true
	}
	if m.Quotes < 1 && m.Retweets < 1 && m.Likes > allLikesMinLikes {
		issues = append(issues, AdviceAllLikes)
		finalScore *= allLikesPenalty
	}

	advice := make([]string, 0, 3+len(issues))
	advice = append(advice, erBandAdvice(er))
	advice = append(advice, trustAdvice(a)...)
	advice = append(advice, issues...)

	return ScoreResult{
		EngagementRate:        er,
		EngagementRatePercent: er * 100,
		SmartEngagement:       smartEngagement,
		FinalScore:            math.Max(finalScore, 0),
		Disqualified:          disqualified,
		Advice:                advice,
	}
}

// RoundTo2Decimals rounds a float to 2 decimal places for presentation.
func RoundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
