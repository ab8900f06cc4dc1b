package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"thumblytic-backend-go/internal/models"
	"thumblytic-backend-go/pkg/cache"
)

// SuggestionCacheTTL bounds how long identical suggestion/audit inputs reuse a result.
const SuggestionCacheTTL = time.Hour

type suggestionService struct {
	provider ContentProvider
	cache    cache.Cache
	logger   *zap.Logger
}

// NewSuggestionService creates a SuggestionService. c may be nil to disable caching.
func NewSuggestionService(provider ContentProvider, c cache.Cache, logger *zap.Logger) SuggestionService {
	return &suggestionService{provider: provider, cache: c, logger: logger.Named("suggestion")}
}

func cacheKey(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

func (s *suggestionService) Suggest(ctx context.Context, topic string) (*models.Suggestion, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	key := cacheKey("suggest", strings.ToLower(topic))

	var cached models.Suggestion
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	out, err := s.provider.Suggest(ctx, topic)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, out)
	return out, nil
}

func (s *suggestionService) Audit(ctx context.Context, cfg models.ThumbnailConfig) (*models.AuditResult, error) {
	cfg = cfg.Normalize()
	if cfg.Topic == "" {
		return nil, ErrEmptyTopic
	}
	key := cacheKey("audit", cfg.Topic, string(cfg.Style), string(cfg.Emotion), cfg.TextOnThumbnail)

	var cached models.AuditResult
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	out, err := s.provider.Audit(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, out)
	return out, nil
}

func (s *suggestionService) lookup(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *suggestionService) store(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, SuggestionCacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
