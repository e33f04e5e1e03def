// Package auth resolves login attempts to a single canonical user account
// and issues session tokens. Two credential variants are supported:
// password (for verified accounts) and federated identity (Google OAuth),
// with account linking so a federated login for a known email never
// creates a duplicate account. It also covers the registration and email
// verification lifecycle that produces password accounts in the first
// place.
package auth

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/artfolio/artfolio/pkg/email"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/validator"
)

// Service implements identity reconciliation over a Storage.
type Service struct {
	storage          Storage
	sessions         *session.Manager
	mailer           email.Sender
	logger           *slog.Logger
	bcryptCost       int
	passwordStrength validator.PasswordStrengthConfig
	generateCode     func() (string, error)
	now              func() time.Time
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithPasswordStrength overrides password strength requirements.
func WithPasswordStrength(cfg validator.PasswordStrengthConfig) Option {
	return func(s *Service) { s.passwordStrength = cfg }
}

// WithCodeGenerator overrides verification code generation, used in tests.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.generateCode = fn
		}
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the auth service.
func NewService(storage Storage, sessions *session.Manager, mailer email.Sender, opts ...Option) *Service {
	s := &Service{
		storage:          storage,
		sessions:         sessions,
		mailer:           mailer,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		bcryptCost:       bcrypt.DefaultCost,
		passwordStrength: validator.DefaultPasswordStrength,
		generateCode:     generateVerificationCode,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueSession signs a fresh session token for the user.
func (s *Service) IssueSession(user *User) (string, error) {
	token, err := s.sessions.Issue(user.Identity())
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return token, nil
}

// generateVerificationCode returns a 6-digit numeric code from crypto/rand.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
