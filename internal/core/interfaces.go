package core

import (
	"context"
	"time"

	"thumblytic-backend-go/internal/gemini"
	"thumblytic-backend-go/internal/models"
)

// ProfileService synchronizes and reads per-identity profiles.
type ProfileService interface {
	// Sync fetches the caller's profile, creating it or applying the daily refill as needed.
	Sync(ctx context.Context, identity models.Identity) (*models.Profile, error)
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
}

// GenerationResult is a saved record plus the owner's profile after the spend.
type GenerationResult struct {
	Generation *models.Generation `json:"generation"`
	Profile    *models.Profile    `json:"profile"`
}

// GenerationService runs the render/edit lifecycle.
type GenerationService interface {
	Create(ctx context.Context, identity models.Identity, cfg models.ThumbnailConfig) (*GenerationResult, error)
	Edit(ctx context.Context, identity models.Identity, req models.EditRequest) (*GenerationResult, error)
	History(ctx context.Context, userID string, limit int) ([]*models.Generation, error)
}

// SuggestionService provides AI strategy suggestions and virality audits.
type SuggestionService interface {
	Suggest(ctx context.Context, topic string) (*models.Suggestion, error)
	Audit(ctx context.Context, cfg models.ThumbnailConfig) (*models.AuditResult, error)
}

// AppealService handles plan appeals.
type AppealService interface {
	Submit(ctx context.Context, identity models.Identity, plan models.RequestedPlan, message string) (*models.Appeal, error)
	ListMine(ctx context.Context, userID string) ([]*models.Appeal, error)
	Approve(ctx context.Context, actor models.Identity, appealID string, opts models.ApprovalOptions) (*models.Appeal, error)
	Reject(ctx context.Context, actor models.Identity, appealID string) (*models.Appeal, error)
}

// Overview is the admin console snapshot.
type Overview struct {
	Profiles        []*models.Profile `json:"profiles"`
	Appeals         []*models.Appeal  `json:"appeals"`
	GenerationCount int64             `json:"generation_count"`
	PendingAppeals  int               `json:"pending_appeals"`
	PaidProfiles    int               `json:"paid_profiles"`
}

// MigrationResult reports the outcome of an on-demand schema migration.
type MigrationResult struct {
	Version uint `json:"version"`
	Applied bool `json:"applied"`
}

// AdminService backs the privileged console.
type AdminService interface {
	Overview(ctx context.Context) (*Overview, error)
	SetSuspended(ctx context.Context, actor models.Identity, userID string, suspended bool) (*models.Profile, error)
	ToggleSuspension(ctx context.Context, actor models.Identity, userID string) (*models.Profile, error)
	OverridePlan(ctx context.Context, actor models.Identity, userID string, plan models.Plan) (*models.Profile, error)
	ResetAllPlans(ctx context.Context, actor models.Identity, confirmation string) (int64, error)
	ApplySchema(ctx context.Context, actor models.Identity) (*MigrationResult, error)
	AuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// SignUpResult carries the new identity and, when the store is reachable, its profile.
type SignUpResult struct {
	UID     string          `json:"uid"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// AccountService manages identities at the identity provider.
type AccountService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*SignUpResult, error)
	SignOut(ctx context.Context, uid string) error
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
	// Record writes an entry and logs, rather than returns, any failure.
	Record(ctx context.Context, actorID, action, targetType, targetID string, details map[string]interface{})
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// EncryptionService defines the interface for cryptographic operations.
type EncryptionService interface {
	Encrypt(plainText string, key []byte) (string, error)
	Decrypt(cipherTextBase64 string, key []byte) (string, error)
}

// ContentProvider is the generative backend. *gemini.Client satisfies it.
type ContentProvider interface {
	GenerateThumbnail(ctx context.Context, cfg models.ThumbnailConfig) (gemini.Image, error)
	EditImage(ctx context.Context, sources []gemini.Image, instructions string) (gemini.Image, error)
	Suggest(ctx context.Context, topic string) (*models.Suggestion, error)
	Audit(ctx context.Context, cfg models.ThumbnailConfig) (*models.AuditResult, error)
}

// ImageStore persists a rendered image and returns the URL stored on the record.
type ImageStore interface {
	Store(ctx context.Context, userID string, img gemini.Image) (string, error)
}

// EventPublisher sends domain events after state changes commit.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// Clock returns the current time. Calendar decisions use its UTC date.
type Clock func() time.Time
