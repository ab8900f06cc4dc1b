package core

import "errors"

// Input and state errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrEmptyTopic          = errors.New("topic is required")
	ErrInvalidConfig       = errors.New("invalid thumbnail configuration")
	ErrProfileSuspended    = errors.New("account is suspended")
	ErrCreditsExhausted    = errors.New("daily credits exhausted")
	ErrNoSourceImages      = errors.New("at least one source image is required")
	ErrTooManySourceImages = errors.New("at most 3 source images are allowed")
	ErrInvalidSourceImage  = errors.New("source image is not a valid image")
	ErrEmptyInstructions   = errors.New("edit instructions are required")

	ErrEmptyAppealMessage   = errors.New("appeal message is required")
	ErrAppealMessageTooLong = errors.New("appeal message is too long")
	ErrInvalidPlan          = errors.New("invalid plan")
	ErrInvalidCredits       = errors.New("credits must not be negative")
	ErrAppealNotFound       = errors.New("appeal not found")
	ErrAppealNotPending     = errors.New("appeal is no longer pending")

	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileUnavailable   = errors.New("profile store unavailable")
	ErrConfirmationRequired = errors.New(`confirmation must equal "` + ResetConfirmationPhrase + `"`)
	ErrSchemaMissing        = errors.New("database schema is not initialized")
	ErrMigrationUnavailable = errors.New("schema migration is not configured")

	ErrInvalidEmail = errors.New("a valid email is required")
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	ErrEmailTaken   = errors.New("email is already registered")
)

// ResetConfirmationPhrase must be typed by an admin to downgrade every plan.
const ResetConfirmationPhrase = "RESET ALL PLANS"

// MaxSourceImages bounds edit-mode inputs.
const MaxSourceImages = 3
