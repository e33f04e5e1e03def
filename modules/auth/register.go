package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	emailpkg "github.com/artfolio/artfolio/pkg/email"
	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/sanitizer"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/validator"
)

// Registration is the outcome of a signup attempt. EmailSent is false when
// the account and code were stored but the verification email could not be
// delivered; the caller reports this as degraded success.
type Registration struct {
	UserID    uuid.UUID
	EmailSent bool
}

// Verification is the outcome of confirming a verification code.
// WelcomeEmailSent is false when verification succeeded but the follow-up
// email failed, a degraded success rather than a failure.
type Verification struct {
	User             *User
	WelcomeEmailSent bool
}

// Register starts or restarts a password signup.
//
// A verified account with the same email is a conflict. An unverified
// account is overwritten in place with the new name, password hash and a
// fresh verification code, so an abandoned signup can be retried without
// support intervention. Persisting the code must complete before any email
// is sent.
func (s *Service) Register(ctx context.Context, name, emailAddr, password string) (*Registration, error) {
	name = sanitizer.TrimName(name)
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.Required("name", name),
		validator.ValidEmail("email", emailAddr),
		validator.StrongPassword("password", password, s.passwordStrength),
	); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}

	existing, err := s.storage.GetUserByEmail(ctx, emailAddr)
	switch {
	case err == nil && existing.Verified():
		return nil, ErrEmailTaken

	case err == nil:
		// Re-registration before verification: overwrite the pending signup.
		if err := s.storage.ResetPendingRegistration(ctx, existing.ID, name, hash, code); err != nil {
			return nil, fmt.Errorf("failed to reset pending registration: %w", err)
		}
		return s.finishRegistration(ctx, existing.ID, name, emailAddr, code), nil

	case errors.Is(err, ErrUserNotFound):
		user := &User{
			ID:               uuid.New(),
			Email:            emailAddr,
			Name:             name,
			PasswordHash:     hash,
			Role:             session.RoleUser,
			VerificationCode: code,
			CreatedAt:        s.now(),
		}
		if err := s.storage.CreateUser(ctx, user); err != nil {
			if errors.Is(err, ErrEmailTaken) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return s.finishRegistration(ctx, user.ID, name, emailAddr, code), nil

	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
}

func (s *Service) finishRegistration(ctx context.Context, userID uuid.UUID, name, emailAddr, code string) *Registration {
	err := s.mailer.SendEmail(ctx, emailpkg.SendEmailParams{
		SendTo:   emailAddr,
		Subject:  "Verify your email",
		BodyHTML: verificationEmailBody(name, code),
		Tag:      "verification",
	})
	if err != nil {
		// The code is already stored; the user can request it again by
		// re-registering.
		s.logger.Error("failed to send verification email",
			logger.Component("auth"),
			logger.UserID(userID.String()),
			logger.Error(err),
		)
	}

	return &Registration{UserID: userID, EmailSent: err == nil}
}

// Verify confirms a verification code, activating the account. On success
// the email is added to the subscriber list and a welcome email goes out;
// failures of either are logged and reported as degraded success.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, code string) (*Verification, error) {
	if err := validator.Apply(validator.Required("code", code)); err != nil {
		return nil, err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.VerificationCode == "" || user.VerificationCode != code {
		return nil, ErrInvalidVerificationCode
	}

	now := s.now()
	if err := s.storage.MarkVerified(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark user verified: %w", err)
	}
	user.VerifiedAt = &now
	user.VerificationCode = ""

	if err := s.storage.AddSubscriber(ctx, user.Email); err != nil {
		s.logger.Error("failed to add subscriber",
			logger.Component("auth"),
			logger.UserID(user.ID.String()),
			logger.Error(err),
		)
	}

	welcomeErr := s.mailer.SendEmail(ctx, emailpkg.SendEmailParams{
		SendTo:   user.Email,
		Subject:  "Welcome to Artfolio",
		BodyHTML: welcomeEmailBody(user.Name),
		Tag:      "welcome",
	})
	if welcomeErr != nil {
		s.logger.Error("failed to send welcome email",
			logger.Component("auth"),
			logger.UserID(user.ID.String()),
			logger.Error(welcomeErr),
		)
	}

	s.logger.Info("account verified",
		logger.Component("auth"),
		logger.UserID(user.ID.String()),
		logger.Event("account_verified"),
	)

	return &Verification{User: user, WelcomeEmailSent: welcomeErr == nil}, nil
}

func verificationEmailBody(name, code string) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>.</p><p>Enter it to finish creating your account.</p>`,
		name, code,
	)
}

func welcomeEmailBody(name string) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p><p>Your account is ready. Start publishing your designs today.</p>`,
		name,
	)
}
