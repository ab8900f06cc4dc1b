package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/gemini"
	"thumblytic-backend-go/internal/metrics"
	"thumblytic-backend-go/internal/models"
)

const (
	modeCreate = "create"
	modeEdit   = "edit"
)

// GenerationOptions holds tunables for GenerationService.
type GenerationOptions struct {
	// EditModeSpendsCredit applies the free-plan credit gate and decrement to edit mode.
	EditModeSpendsCredit bool
}

type generationService struct {
	profiles    ProfileService
	generations db.GenerationRepository
	provider    ContentProvider
	images      ImageStore
	opts        GenerationOptions
	logger      *zap.Logger
}

// NewGenerationService creates a GenerationService. A nil ImageStore stores images inline.
func NewGenerationService(
	profiles ProfileService,
	generations db.GenerationRepository,
	provider ContentProvider,
	images ImageStore,
	opts GenerationOptions,
	logger *zap.Logger,
) GenerationService {
	if images == nil {
		images = InlineImageStore{}
	}
	return &generationService{
		profiles:    profiles,
		generations: generations,
		provider:    provider,
		images:      images,
		opts:        opts,
		logger:      logger.Named("generation"),
	}
}

func validateConfig(cfg models.ThumbnailConfig) error {
	if cfg.Topic == "" {
		return ErrEmptyTopic
	}
	switch {
	case !cfg.Style.Valid():
		return fmt.Errorf("%w: unknown style %q", ErrInvalidConfig, cfg.Style)
	case !cfg.Emotion.Valid():
		return fmt.Errorf("%w: unknown emotion %q", ErrInvalidConfig, cfg.Emotion)
	case !cfg.FaceType.Valid():
		return fmt.Errorf("%w: unknown face type %q", ErrInvalidConfig, cfg.FaceType)
	case !cfg.AspectRatio.Valid():
		return fmt.Errorf("%w: unknown aspect ratio %q", ErrInvalidConfig, cfg.AspectRatio)
	}
	return nil
}

// checkGate loads the caller's profile and enforces suspension and, if metered, credits.
func (s *generationService) checkGate(ctx context.Context, identity models.Identity, metered bool) (*models.Profile, error) {
	profile, err := s.profiles.Sync(ctx, identity)
	if err != nil {
		return nil, err
	}
	if profile.IsSuspended {
		return nil, ErrProfileSuspended
	}
	if metered && !profile.HasUnlimitedCredits() && profile.Credits <= 0 {
		return nil, ErrCreditsExhausted
	}
	return profile, nil
}

func (s *generationService) Create(ctx context.Context, identity models.Identity, cfg models.ThumbnailConfig) (*GenerationResult, error) {
	cfg = cfg.Normalize()
	if err := validateConfig(cfg); err != nil {
		metrics.RecordGeneration(modeCreate, metrics.OutcomeRejected)
		return nil, err
	}
	profile, err := s.checkGate(ctx, identity, true)
	if err != nil {
		metrics.RecordGeneration(modeCreate, metrics.OutcomeRejected)
		return nil, err
	}

	start := time.Now()
	img, err := s.provider.GenerateThumbnail(ctx, cfg)
	metrics.ObserveProviderCall("render", time.Since(start))
	if err != nil {
		metrics.RecordGeneration(modeCreate, metrics.OutcomeProviderError)
		s.logger.Warn("render failed", zap.String("userID", identity.UID), zap.Error(err))
		return nil, err
	}

	return s.persist(ctx, modeCreate, profile, img, &models.Generation{
		UserID: identity.UID,
		Topic:  cfg.Topic,
		Config: cfg.ToMap(),
	}, true)
}

func (s *generationService) Edit(ctx context.Context, identity models.Identity, req models.EditRequest) (*GenerationResult, error) {
	sources, instructions, err := parseEditRequest(req)
	if err != nil {
		metrics.RecordGeneration(modeEdit, metrics.OutcomeRejected)
		return nil, err
	}
	spend := s.opts.EditModeSpendsCredit
	profile, err := s.checkGate(ctx, identity, spend)
	if err != nil {
		metrics.RecordGeneration(modeEdit, metrics.OutcomeRejected)
		return nil, err
	}

	start := time.Now()
	img, err := s.provider.EditImage(ctx, sources, instructions)
	metrics.ObserveProviderCall("edit", time.Since(start))
	if err != nil {
		metrics.RecordGeneration(modeEdit, metrics.OutcomeProviderError)
		s.logger.Warn("edit failed", zap.String("userID", identity.UID), zap.Error(err))
		return nil, err
	}

	return s.persist(ctx, modeEdit, profile, img, &models.Generation{
		UserID: identity.UID,
		Topic:  models.EditModeTopic,
		Config: models.JSONMap{
			"style":        models.EditModeStyle,
			"instructions": instructions,
			"sourceCount":  len(sources),
		},
	}, spend)
}

func parseEditRequest(req models.EditRequest) ([]gemini.Image, string, error) {
	if len(req.Images) == 0 {
		return nil, "", ErrNoSourceImages
	}
	if len(req.Images) > MaxSourceImages {
		return nil, "", ErrTooManySourceImages
	}
	instructions := strings.TrimSpace(req.Instructions)
	if instructions == "" {
		return nil, "", ErrEmptyInstructions
	}
	sources := make([]gemini.Image, 0, len(req.Images))
	for i, payload := range req.Images {
		img, err := gemini.ParseImagePayload(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: image %d: %v", ErrInvalidSourceImage, i+1, err)
		}
		sources = append(sources, img)
	}
	return sources, instructions, nil
}

// persist stores the image and writes the record. Nothing is written before the provider succeeded.
func (s *generationService) persist(ctx context.Context, mode string, profile *models.Profile, img gemini.Image, gen *models.Generation, spend bool) (*GenerationResult, error) {
	url, err := s.images.Store(ctx, gen.UserID, img)
	if err != nil {
		metrics.RecordGeneration(mode, metrics.OutcomeStoreError)
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	gen.ImageURL = url

	metered := spend && !profile.HasUnlimitedCredits()
	saved, err := s.generations.CreateAndSpend(ctx, gen, metered)
	if err != nil {
		metrics.RecordGeneration(mode, metrics.OutcomeStoreError)
		return nil, fmt.Errorf("failed to save generation: %w", err)
	}
	metrics.RecordGeneration(mode, metrics.OutcomeSuccess)
	if metered {
		metrics.RecordCreditSpent()
	}

	updated, err := s.profiles.GetByID(ctx, gen.UserID)
	if err != nil {
		s.logger.Warn("profile re-read after generation failed", zap.String("userID", gen.UserID), zap.Error(err))
		fallback := *profile
		if metered && fallback.Credits > 0 {
			fallback.Credits--
		}
		updated = &fallback
	}
	return &GenerationResult{Generation: saved, Profile: updated}, nil
}

func (s *generationService) History(ctx context.Context, userID string, limit int) ([]*models.Generation, error) {
	gens, err := s.generations.ListByUser(ctx, userID, limit)
	if err != nil {
		if db.IsSchemaMissing(err) {
			return nil, fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
		return nil, err
	}
	return gens, nil
}

// IsProviderError reports whether err came from the generative provider.
func IsProviderError(err error) bool {
	var pe *gemini.ProviderError
	return errors.As(err, &pe)
}
