package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"engagement-score-service/internal/app/service"
	"engagement-score-service/internal/domain"
	"engagement-score-service/internal/transport/httpserver/dto"
	"engagement-score-service/internal/validator"
)

func newTestApp(maxBatchSize int) *fiber.App {
	svc := service.NewScoreService(nil, 0, nil, zap.NewNop())
	h := NewScoreHandler(svc, validator.New(), maxBatchSize, zap.NewNop())

	app := fiber.New()
	app.Post("/post", h.ScorePost)
	app.Post("/batch", h.ScoreBatch)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func TestScoreHandler_ScorePost(t *testing.T) {
	app := newTestApp(100)

	status, body := postJSON(t, app, "/post", `{
		"likes": 500, "retweets": 120, "quotes": 40, "impressions": 20000,
		"followers": 5000, "smart_followers": 800, "verified_followers": 600
	}`)
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp dto.ScoreResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	assert.Equal(t, 3.3, resp.EngagementRatePercent)
	assert.Equal(t, 165.76, resp.SmartEngagement)
	assert.Equal(t, 5227.75, resp.FinalScore)
	assert.False(t, resp.Disqualified)
	assert.NotEmpty(t, resp.Advice)
}

func TestScoreHandler_ScorePost_SuppliedSmartEngagement(t *testing.T) {
	app := newTestApp(100)

	status, body := postJSON(t, app, "/post", `{
		"likes": 500, "retweets": 120, "quotes": 40, "impressions": 20000,
		"followers": 5000, "smart_followers": 800, "verified_followers": 600,
		"smart_engagement": 42
	}`)
	require.Equal(t, fiber.StatusOK, status)

	var resp dto.ScoreResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 42.0, resp.SmartEngagement)
}

func TestScoreHandler_ScorePost_Disqualified(t *testing.T) {
	app := newTestApp(100)

	status, body := postJSON(t, app, "/post", `{"likes": 600, "impressions": 1000, "followers": 100}`)
	require.Equal(t, fiber.StatusOK, status)

	var resp dto.ScoreResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.True(t, resp.Disqualified)
	assert.Zero(t, resp.FinalScore)
	assert.Contains(t, resp.Advice, domain.AdviceLikeRateDQ)
}

func TestScoreHandler_ScorePost_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"likes": `, "INVALID_BODY"},
		{"wrong type", `{"likes": "many", "impressions": 10}`, "INVALID_BODY"},
		{"zero impressions", `{"likes": 1, "impressions": 0}`, "VALIDATION_ERROR"},
		{"negative likes", `{"likes": -1, "impressions": 10}`, "VALIDATION_ERROR"},
		{"smart above followers", `{"impressions": 10, "followers": 5, "smart_followers": 6}`, "VALIDATION_ERROR"},
	}

	app := newTestApp(100)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/post", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestScoreHandler_ScoreBatch(t *testing.T) {
	app := newTestApp(100)

	status, body := postJSON(t, app, "/batch", `{
		"posts": [
			{"likes": 500, "retweets": 120, "quotes": 40, "impressions": 20000},
			{"likes": 10, "retweets": 1, "quotes": 0, "impressions": 500},
			{"likes": 2000, "retweets": 400, "quotes": 150, "impressions": 150000}
		],
		"followers": 5000, "smart_followers": 800, "verified_followers": 600
	}`)
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	require.Len(t, resp.PerPost, 3)
	assert.Equal(t, 5432.76, resp.PerPost[0].FinalScore)
	assert.True(t, resp.PerPost[1].Excluded)
	assert.Zero(t, resp.PerPost[1].FinalScore)
	assert.Equal(t, 108943.85, resp.PerPost[2].FinalScore)
	assert.Equal(t, 114376.6, resp.TotalScore)
	assert.Equal(t, 1.89, resp.TotalEngagementRatePercent)
	assert.Equal(t, 2, resp.EligiblePosts)
	assert.NotEmpty(t, resp.Advice)
}

func TestScoreHandler_ScoreBatch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		max    int
		body   string
		code   string
		detail string
	}{
		{"no posts", 100, `{"followers": 10}`, "VALIDATION_ERROR", "posts"},
		{"empty posts", 100, `{"posts": []}`, "VALIDATION_ERROR", "posts"},
		{"nested zero impressions", 100, `{"posts": [{"likes": 1, "impressions": 0}]}`, "VALIDATION_ERROR", "posts[0].impressions"},
		{"over configured limit", 1, `{"posts": [{"impressions": 10}, {"impressions": 10}]}`, "BATCH_TOO_LARGE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, newTestApp(tt.max), "/batch", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tt.code, resp.Code)
			if tt.detail != "" {
				assert.Contains(t, string(body), tt.detail)
			}
		})
	}
}

func TestScoreHandler_LogsRejectedRequests(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		message string
	}{
		{"malformed body", "/post", `{"likes":`, "invalid score request body"},
		{"validation failure", "/post", `{"likes": 1, "impressions": 0}`, "score request failed validation"},
		{"batch too large", "/batch", `{"posts": [{"impressions": 1}, {"impressions": 1}]}`, "batch rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			svc := service.NewScoreService(nil, 0, nil, zap.NewNop())
			h := NewScoreHandler(svc, validator.New(), 1, zap.New(core))

			app := fiber.New()
			app.Post("/post", h.ScorePost)
			app.Post("/batch", h.ScoreBatch)

			status, _ := postJSON(t, app, tt.path, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)

			entries := logs.FilterMessage(tt.message).All()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		})
	}
}
