package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/sanitizer"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/validator"
)

// AuthenticateFederated resolves a provider-verified identity to exactly
// one local account.
//
// An existing account with the same email is linked to the provider
// subject (keeping its id and role); an unknown email creates a fresh
// account that is immediately verified, since the provider has already
// proven email ownership. A lost create race against a concurrent
// federated login surfaces as a unique-violation from the store and is
// treated as the linking signal: the winner's row is fetched and linked
// instead. Repeated federated logins are therefore idempotent and can
// never duplicate an email.
func (s *Service) AuthenticateFederated(ctx context.Context, profile FederatedProfile) (*User, error) {
	if err := validator.Apply(
		validator.Required("subject_id", profile.SubjectID),
		validator.Required("email", profile.Email),
	); err != nil {
		return nil, err
	}

	profile.Email = sanitizer.NormalizeEmail(profile.Email)
	profile.Name = sanitizer.TrimName(profile.Name)

	user, err := s.storage.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		return s.linkExisting(ctx, user, profile)
	case errors.Is(err, ErrUserNotFound):
		return s.createFromProfile(ctx, profile)
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
}

func (s *Service) linkExisting(ctx context.Context, user *User, profile FederatedProfile) (*User, error) {
	if user.GoogleID != "" {
		// Already linked; nothing to reconcile.
		return user, nil
	}

	if err := s.storage.LinkGoogleID(ctx, user.ID, profile.SubjectID); err != nil {
		return nil, fmt.Errorf("failed to link provider identity: %w", err)
	}
	user.GoogleID = profile.SubjectID

	s.logger.Info("linked federated identity to existing account",
		logger.Component("auth"),
		logger.UserID(user.ID.String()),
		logger.Event("federated_link"),
	)
	return user, nil
}

func (s *Service) createFromProfile(ctx context.Context, profile FederatedProfile) (*User, error) {
	now := s.now()
	user := &User{
		ID:         uuid.New(),
		Email:      profile.Email,
		Name:       profile.Name,
		GoogleID:   profile.SubjectID,
		Role:       session.RoleUser,
		AvatarURL:  profile.AvatarURL,
		VerifiedAt: &now,
		CreatedAt:  now,
	}

	err := s.storage.CreateUser(ctx, user)
	if err == nil {
		s.logger.Info("created account from federated identity",
			logger.Component("auth"),
			logger.UserID(user.ID.String()),
			logger.Event("federated_signup"),
		)
		return user, nil
	}

	if !errors.Is(err, ErrEmailTaken) {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Lost the create race: the email unique index caught a concurrent
	// signup. Link against the winner's row.
	existing, err := s.storage.GetUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user after create race: %w", err)
	}
	return s.linkExisting(ctx, existing, profile)
}
