// Package dto provides data transfer objects for HTTP requests and responses.
package dto

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"engagement-score-service/internal/domain"
)

// PostRequest holds the counters of one post inside a batch.
type PostRequest struct {
	Likes       int64 `json:"likes" validate:"gte=0"`
	Retweets    int64 `json:"retweets" validate:"gte=0"`
	Quotes      int64 `json:"quotes" validate:"gte=0"`
	Impressions int64 `json:"impressions" validate:"gt=0"`
}

// ToDomain converts the request to domain.PostMetrics.
func (r PostRequest) ToDomain() domain.PostMetrics {
	return domain.PostMetrics{
		Likes:       r.Likes,
		Retweets:    r.Retweets,
		Quotes:      r.Quotes,
		Impressions: r.Impressions,
	}
}

// ScorePostRequest is the body of POST /api/v1/scores/post.
type ScorePostRequest struct {
	Likes             int64    `json:"likes" validate:"gte=0"`
	Retweets          int64    `json:"retweets" validate:"gte=0"`
	Quotes            int64    `json:"quotes" validate:"gte=0"`
	Impressions       int64    `json:"impressions" validate:"gt=0"`
	Followers         int64    `json:"followers" validate:"gte=0"`
	SmartFollowers    int64    `json:"smart_followers" validate:"gte=0,ltefield=Followers"`
	VerifiedFollowers int64    `json:"verified_followers" validate:"gte=0,ltefield=Followers"`
	SmartEngagement   *float64 `json:"smart_engagement,omitempty" validate:"omitempty,gte=0"`
}

// ToDomain splits the request into the engine inputs.
func (r ScorePostRequest) ToDomain() (domain.PostMetrics, domain.AudienceProfile) {
	post := domain.PostMetrics{
		Likes:           r.Likes,
		Retweets:        r.Retweets,
		Quotes:          r.Quotes,
		Impressions:     r.Impressions,
		SmartEngagement: r.SmartEngagement,
	}

	return post, audience(r.Followers, r.SmartFollowers, r.VerifiedFollowers)
}

// ScoreBatchRequest is the body of POST /api/v1/scores/batch.
type ScoreBatchRequest struct {
	Posts             []PostRequest `json:"posts" validate:"required,min=1,max=100,dive"`
	Followers         int64         `json:"followers" validate:"gte=0"`
	SmartFollowers    int64         `json:"smart_followers" validate:"gte=0,ltefield=Followers"`
	VerifiedFollowers int64         `json:"verified_followers" validate:"gte=0,ltefield=Followers"`
}

// ToDomain splits the request into the engine inputs.
func (r ScoreBatchRequest) ToDomain() ([]domain.PostMetrics, domain.AudienceProfile) {
	posts := make([]domain.PostMetrics, len(r.Posts))
	for i, p := range r.Posts {
		posts[i] = p.ToDomain()
	}

	return posts, audience(r.Followers, r.SmartFollowers, r.VerifiedFollowers)
}

func audience(followers, smart, verified int64) domain.AudienceProfile {
	return domain.AudienceProfile{
		Followers:         followers,
		SmartFollowers:    smart,
		VerifiedFollowers: verified,
	}
}

// CalculatorForm holds the raw fields of the calculator page. Values are kept
// as strings so the page can echo back exactly what the user typed.
type CalculatorForm struct {
	Likes             string `form:"likes"`
	Retweets          string `form:"retweets"`
	Quotes            string `form:"quotes"`
	Impressions       string `form:"impressions"`
	Followers         string `form:"followers"`
	SmartFollowers    string `form:"smart_followers"`
	VerifiedFollowers string `form:"verified_followers"`
}

// ToDomain parses the form leniently: empty, non-numeric and negative fields
// become 0.
func (f CalculatorForm) ToDomain() (domain.PostMetrics, domain.AudienceProfile) {
	post := domain.PostMetrics{
		Likes:       parseCount(f.Likes),
		Retweets:    parseCount(f.Retweets),
		Quotes:      parseCount(f.Quotes),
		Impressions: parseCount(f.Impressions),
	}
	audience := domain.AudienceProfile{
		Followers:         parseCount(f.Followers),
		SmartFollowers:    parseCount(f.SmartFollowers),
		VerifiedFollowers: parseCount(f.VerifiedFollowers),
	}

	return post, audience
}

// BatchForm holds the raw fields of the batch calculator page. Post counters
// are repeated inputs: row i is made of the i-th value of every column.
type BatchForm struct {
	Likes             []string `form:"likes"`
	Retweets          []string `form:"retweets"`
	Quotes            []string `form:"quotes"`
	Impressions       []string `form:"impressions"`
	Followers         string   `form:"followers"`
	SmartFollowers    string   `form:"smart_followers"`
	VerifiedFollowers string   `form:"verified_followers"`
	Action            string   `form:"action"`
}

// BatchRow is one post row of the batch calculator page.
type BatchRow struct {
	Likes       string
	Retweets    string
	Quotes      string
	Impressions string
}

func (r BatchRow) blank() bool {
	return strings.TrimSpace(r.Likes+r.Retweets+r.Quotes+r.Impressions) == ""
}

// Rows zips the post columns into rows. Short columns read as empty cells
// and rows left entirely blank are dropped.
func (f BatchForm) Rows() []BatchRow {
	n := max(len(f.Likes), len(f.Retweets), len(f.Quotes), len(f.Impressions))

	rows := make([]BatchRow, 0, n)
	for i := 0; i < n; i++ {
		row := BatchRow{
			Likes:       cell(f.Likes, i),
			Retweets:    cell(f.Retweets, i),
			Quotes:      cell(f.Quotes, i),
			Impressions: cell(f.Impressions, i),
		}
		if row.blank() {
			continue
		}
		rows = append(rows, row)
	}

	return rows
}

// ToDomain parses Rows with the same lenient rules as CalculatorForm.
func (f BatchForm) ToDomain() ([]domain.PostMetrics, domain.AudienceProfile) {
	rows := f.Rows()

	posts := make([]domain.PostMetrics, len(rows))
	for i, row := range rows {
		posts[i] = domain.PostMetrics{
			Likes:       parseCount(row.Likes),
			Retweets:    parseCount(row.Retweets),
			Quotes:      parseCount(row.Quotes),
			Impressions: parseCount(row.Impressions),
		}
	}
	audience := domain.AudienceProfile{
		Followers:         parseCount(f.Followers),
		SmartFollowers:    parseCount(f.SmartFollowers),
		VerifiedFollowers: parseCount(f.VerifiedFollowers),
	}

	return posts, audience
}

func cell(column []string, i int) string {
	if i < len(column) {
		return column[i]
	}
	return ""
}

// parseCount accepts integers, decimals (truncated) and thousands separators.
// The result is clamped to [0, MaxInt64]; NaN becomes 0.
func parseCount(raw string) int64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return max(n, 0)
	}

	// ParseFloat reports ErrRange with ±Inf for overflowing input, which
	// the clamp below handles.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}

	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(f)
	}
}
