package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-score-service/internal/domain"
	"engagement-score-service/internal/transport/httpserver/dto"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir()) // no config file on the search path

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPostCmd_Text(t *testing.T) {
	out, err := execute(t, "post",
		"--likes", "10", "--retweets", "5", "--quotes", "2",
		"--impressions", "1000", "--followers", "100",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Engagement rate:  1.70%")
	assert.Contains(t, out, "Final score:      303.56")
	assert.Contains(t, out, "- "+domain.AdviceERLow)
}

func TestPostCmd_JSON(t *testing.T) {
	out, err := execute(t, "post",
		"--likes", "500", "--retweets", "120", "--quotes", "40", "--impressions", "20000",
		"--followers", "5000", "--smart-followers", "800", "--verified-followers", "600",
		"--json",
	)
	require.NoError(t, err)

	var resp dto.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 5227.75, resp.FinalScore)
	assert.Equal(t, 165.76, resp.SmartEngagement)
}

func TestPostCmd_SmartEngagementFlag(t *testing.T) {
	out, err := execute(t, "post",
		"--likes", "500", "--retweets", "120", "--quotes", "40", "--impressions", "20000",
		"--followers", "5000", "--smart-followers", "800", "--verified-followers", "600",
		"--smart-engagement", "42", "--json",
	)
	require.NoError(t, err)

	var resp dto.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 42.0, resp.SmartEngagement)
	assert.Equal(t, 3542.63, resp.FinalScore)
}

func TestPostCmd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing impressions", []string{"post", "--likes", "1"}},
		{"zero impressions", []string{"post", "--impressions", "0"}},
		{"smart above followers", []string{"post", "--impressions", "10", "--followers", "1", "--smart-followers", "2"}},
		{"not a number", []string{"post", "--impressions", "many"}},
		{"negative smart engagement", []string{"post", "--impressions", "10", "--smart-engagement", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestBatchCmd_YAML(t *testing.T) {
	path := writeFile(t, "posts.yaml", `
followers: 5000
smart_followers: 800
verified_followers: 600
posts:
  - {likes: 500, retweets: 120, quotes: 40, impressions: 20000}
  - {likes: 10, retweets: 1, quotes: 0, impressions: 500}
  - {likes: 2000, retweets: 400, quotes: 150, impressions: 150000}
`)

	out, err := execute(t, "batch", "-f", path)
	require.NoError(t, err)

	assert.Contains(t, out, "#2   excluded")
	assert.Contains(t, out, "Eligible posts:   2 of 3")
	assert.Contains(t, out, "Total ER:         1.89%")
	assert.Contains(t, out, "Total score:      114376.60")
}

func TestBatchCmd_JSONFileAndOutput(t *testing.T) {
	path := writeFile(t, "posts.json", `{
		"followers": 1000, "smart_followers": 100, "verified_followers": 50,
		"posts": [{"likes": 10, "retweets": 5, "quotes": 2, "impressions": 1000}]
	}`)

	out, err := execute(t, "batch", "--file", path, "--json")
	require.NoError(t, err)

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.PerPost, 1)
	assert.Equal(t, 1272.99, resp.TotalScore)
	assert.Equal(t, resp.PerPost[0].FinalScore, resp.TotalScore)
}

func TestBatchCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"no posts", "followers: 10\n", "no posts"},
		{"malformed", "posts: [\n", "parse batch file"},
		{"zero impressions", "posts:\n  - {likes: 1}\n", "posts[0].impressions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "batch", "-f", writeFile(t, "posts.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "batch", "-f", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read batch file")
	})
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
