package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/models"
)

// IdentityAdmin is the subset of *auth.Client used for account management.
type IdentityAdmin interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

const minPasswordLength = 6

type accountService struct {
	identities IdentityAdmin
	profiles   ProfileService
	logger     *zap.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(identities IdentityAdmin, profiles ProfileService, logger *zap.Logger) AccountService {
	return &accountService{identities: identities, profiles: profiles, logger: logger.Named("account")}
}

func (s *accountService) SignUp(ctx context.Context, email, password, fullName string) (*SignUpResult, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	fullName = strings.TrimSpace(fullName)

	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if fullName != "" {
		params = params.DisplayName(fullName)
	}
	record, err := s.identities.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	result := &SignUpResult{UID: record.UID}
	profile, err := s.profiles.Sync(ctx, models.Identity{UID: record.UID, Email: email, DisplayName: fullName})
	if err != nil {
		// The identity exists; the profile is created lazily on the next sync.
		s.logger.Warn("profile sync after sign-up failed", zap.String("uid", record.UID), zap.Error(err))
		return result, nil
	}
	result.Profile = profile
	return result, nil
}

func (s *accountService) SignOut(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid cannot be empty")
	}
	if err := s.identities.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}
