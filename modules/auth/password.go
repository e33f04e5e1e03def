package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/sanitizer"
	"github.com/artfolio/artfolio/pkg/validator"
)

// Authenticate verifies an email/password pair against a verified account.
//
// Unverified accounts cannot authenticate with a password even when the
// password is correct, and accounts created through a federated provider
// have no hash to compare against; both cases fail. Callers at the network
// boundary must fold ErrUserNotFound and ErrInvalidCredentials into one
// generic rejection.
func (s *Service) Authenticate(ctx context.Context, emailAddr, password string) (*User, error) {
	if err := validator.Apply(
		validator.Required("email", emailAddr),
		validator.Required("password", password),
	); err != nil {
		return nil, err
	}

	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	user, err := s.storage.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Info("password login for unknown email",
				logger.Component("auth"),
				logger.Event("login_unknown_email"),
			)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Verified() {
		s.logger.Info("password login for unverified account",
			logger.Component("auth"),
			logger.UserID(user.ID.String()),
		)
		return nil, ErrUserNotFound
	}

	if user.PasswordHash == nil {
		// Account exists but was created via OAuth and never set a password.
		s.logger.Info("password login for passwordless account",
			logger.Component("auth"),
			logger.UserID(user.ID.String()),
		)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.Info("password mismatch",
			logger.Component("auth"),
			logger.UserID(user.ID.String()),
		)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("password login succeeded",
		logger.Component("auth"),
		logger.UserID(user.ID.String()),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}
