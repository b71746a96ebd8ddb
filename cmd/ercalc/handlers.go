package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"engagement-score-service/internal/app/service"
	"engagement-score-service/internal/config"
	"engagement-score-service/internal/domain"
	"engagement-score-service/internal/logger"
	"engagement-score-service/internal/transport/httpserver/dto"
	"engagement-score-service/internal/validator"
)

// postInput mirrors the post subcommand flags.
type postInput struct {
	Likes             int64
	Retweets          int64
	Quotes            int64
	Impressions       int64
	Followers         int64
	SmartFollowers    int64
	VerifiedFollowers int64
	SmartEngagement   *float64
}

// batchFile is the on-disk batch format. JSON files parse as YAML.
type batchFile struct {
	domain.AudienceProfile `yaml:",inline"`
	Posts                  []domain.PostMetrics `yaml:"posts"`
}

func (f batchFile) toRequest() dto.ScoreBatchRequest {
	posts := make([]dto.PostRequest, len(f.Posts))
	for i, p := range f.Posts {
		posts[i] = dto.PostRequest{
			Likes:       p.Likes,
			Retweets:    p.Retweets,
			Quotes:      p.Quotes,
			Impressions: p.Impressions,
		}
	}

	return dto.ScoreBatchRequest{
		Posts:             posts,
		Followers:         f.Followers,
		SmartFollowers:    f.SmartFollowers,
		VerifiedFollowers: f.VerifiedFollowers,
	}
}

// newScoreService builds an uncached service logging to stderr.
func newScoreService() (*service.ScoreService, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logger.Level,
		Format: "console",
		Output: "stderr",
	}, logger.SentryConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return service.NewScoreService(nil, 0, nil, log.Logger), log, nil
}

func runPost(ctx context.Context, w io.Writer, in postInput, jsonOutput bool) error {
	req := dto.ScorePostRequest{
		Likes:             in.Likes,
		Retweets:          in.Retweets,
		Quotes:            in.Quotes,
		Impressions:       in.Impressions,
		Followers:         in.Followers,
		SmartFollowers:    in.SmartFollowers,
		VerifiedFollowers: in.VerifiedFollowers,
		SmartEngagement:   in.SmartEngagement,
	}
	if err := validator.New().Validate(&req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	svc, log, err := newScoreService()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	post, audience := req.ToDomain()
	resp := dto.FromScoreResult(svc.ScorePost(ctx, post, audience))

	if jsonOutput {
		return writeJSON(w, resp)
	}

	printScore(w, resp)
	return nil
}

func runBatch(ctx context.Context, w io.Writer, path string, jsonOutput bool) error {
	file, err := loadBatchFile(path)
	if err != nil {
		return err
	}

	req := file.toRequest()
	if err := validator.New().Validate(&req); err != nil {
		return fmt.Errorf("invalid batch file %s: %w", path, err)
	}

	svc, log, err := newScoreService()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	posts, audience := req.ToDomain()
	resp := dto.FromBatchResult(svc.ScoreBatch(ctx, posts, audience))

	if jsonOutput {
		return writeJSON(w, resp)
	}

	printBatch(w, resp)
	return nil
}

func loadBatchFile(path string) (batchFile, error) {
	var file batchFile

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read batch file: %w", err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	if len(file.Posts) == 0 {
		return file, errors.New("batch file has no posts")
	}

	return file, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printScore(w io.Writer, r dto.ScoreResponse) {
	fmt.Fprintf(w, "Engagement rate:  %.2f%%\n", r.EngagementRatePercent)
	fmt.Fprintf(w, "Smart engagement: %.2f\n", r.SmartEngagement)
	fmt.Fprintf(w, "Final score:      %.2f", r.FinalScore)
	if r.Disqualified {
		fmt.Fprint(w, " (disqualified)")
	}
	fmt.Fprintln(w)
	printAdvice(w, r.Advice)
}

func printBatch(w io.Writer, r dto.BatchResponse) {
	for i, p := range r.PerPost {
		if p.Excluded {
			fmt.Fprintf(w, "#%-3d excluded\n", i+1)
			continue
		}
		status := ""
		if p.Disqualified {
			status = " (disqualified)"
		}
		fmt.Fprintf(w, "#%-3d ER %6.2f%%  score %12.2f%s\n", i+1, p.EngagementRatePercent, p.FinalScore, status)
	}

	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Eligible posts:   %d of %d\n", r.EligiblePosts, len(r.PerPost))
	fmt.Fprintf(w, "Total ER:         %.2f%%\n", r.TotalEngagementRatePercent)
	fmt.Fprintf(w, "Total score:      %.2f\n", r.TotalScore)
	printAdvice(w, r.Advice)
}

func printAdvice(w io.Writer, advice []string) {
	for _, a := range advice {
		fmt.Fprintf(w, "- %s\n", a)
	}
}
