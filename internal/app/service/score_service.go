// Package service provides application use cases.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"engagement-score-service/internal/domain"
	"engagement-score-service/internal/metrics"
)

// ErrCacheDisabled is returned by cache operations when no cache is configured.
var ErrCacheDisabled = errors.New("result cache is disabled")

// Recorder receives scoring observations. *metrics.Collector implements it.
type Recorder interface {
	ObserveScore(mode string, finalScore float64, disqualified bool)
	ObserveCacheLookup(result string)
}

// ScoreService wraps the scoring engine with an optional result cache,
// metrics and logging. The engine is pure, so a cached result is exactly
// what recomputation would return.
type ScoreService struct {
	cache    domain.Cache // nil when caching is disabled
	ttl      time.Duration
	recorder Recorder
	logger   *zap.Logger
}

// NewScoreService creates a new ScoreService. cache and recorder may be nil.
func NewScoreService(cache domain.Cache, ttl time.Duration, recorder Recorder, logger *zap.Logger) *ScoreService {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &ScoreService{
		cache:    cache,
		ttl:      ttl,
		recorder: recorder,
		logger:   logger,
	}
}

// ScorePost scores a single post. It never fails: cache errors are logged
// and the result is computed directly.
func (s *ScoreService) ScorePost(ctx context.Context, post domain.PostMetrics, audience domain.AudienceProfile) domain.ScoreResult {
	key := cacheKey("post", struct {
		Post     domain.PostMetrics     `json:"post"`
		Audience domain.AudienceProfile `json:"audience"`
	}{post, audience})

	result, cached := cachedCompute(ctx, s, key, func() domain.ScoreResult {
		return domain.ScorePost(post, audience)
	})

	if !cached {
		s.recorder.ObserveScore(metrics.ModePost, result.FinalScore, result.Disqualified)
	}

	s.logger.Debug("post scored",
		zap.Int64("impressions", post.Impressions),
		zap.Float64("er_percent", result.EngagementRatePercent),
		zap.Float64("final_score", result.FinalScore),
		zap.Bool("disqualified", result.Disqualified),
		zap.Bool("cached", cached),
	)

	return result
}

// ScoreBatch scores several posts of the same account.
func (s *ScoreService) ScoreBatch(ctx context.Context, posts []domain.PostMetrics, audience domain.AudienceProfile) domain.BatchResult {
	key := cacheKey("batch", struct {
		Posts    []domain.PostMetrics   `json:"posts"`
		Audience domain.AudienceProfile `json:"audience"`
	}{posts, audience})

	result, cached := cachedCompute(ctx, s, key, func() domain.BatchResult {
		return domain.ScoreBatch(posts, audience)
	})

	if !cached {
		for _, p := range result.PerPost {
			if p.Excluded {
				continue
			}
			s.recorder.ObserveScore(metrics.ModeBatch, p.FinalScore, p.Disqualified)
		}
	}

	s.logger.Debug("batch scored",
		zap.Int("posts", len(posts)),
		zap.Int("eligible", result.EligiblePosts),
		zap.Float64("total_er_percent", result.TotalEngagementRatePercent),
		zap.Float64("total_score", result.TotalScore),
		zap.Bool("cached", cached),
	)

	return result
}

// ClearCache drops every cached result.
func (s *ScoreService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return ErrCacheDisabled
	}

	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clearing result cache: %w", err)
	}

	s.logger.Info("result cache cleared")

	return nil
}

// cachedCompute returns the cached value for key when present, otherwise
// computes it and stores it. The bool reports a cache hit.
func cachedCompute[T any](ctx context.Context, s *ScoreService, key string, compute func() T) (T, bool) {
	if s.cache == nil {
		return compute(), false
	}

	data, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.recorder.ObserveCacheLookup(metrics.CacheError)
		s.logger.Warn("result cache lookup failed", zap.String("key", key), zap.Error(err))
	case data != nil:
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			s.recorder.ObserveCacheLookup(metrics.CacheHit)

			return cached, true
		}
		s.recorder.ObserveCacheLookup(metrics.CacheError)
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	default:
		s.recorder.ObserveCacheLookup(metrics.CacheMiss)
	}

	value := compute()

	encoded, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("encoding result for cache failed", zap.Error(err))

		return value, false
	}
	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		s.logger.Warn("result cache store failed", zap.String("key", key), zap.Error(err))
	}

	return value, false
}

// cacheKey derives a deterministic key from the JSON encoding of the inputs.
func cacheKey(kind string, input any) string {
	encoded, _ := json.Marshal(input)
	sum := sha256.Sum256(encoded)

	return kind + ":" + hex.EncodeToString(sum[:])
}

type nopRecorder struct{}

func (nopRecorder) ObserveScore(string, float64, bool) {}
func (nopRecorder) ObserveCacheLookup(string)          {}
