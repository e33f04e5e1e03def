package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artfolio/artfolio/pkg/session"
)

// User represents an account. PasswordHash is nil for accounts created
// through a federated provider until the user sets a password; GoogleID is
// empty until the account is linked to a Google identity.
type User struct {
	ID               uuid.UUID
	Email            string
	Name             string
	PasswordHash     []byte
	GoogleID         string
	Role             session.Role
	AvatarURL        string
	VerifiedAt       *time.Time
	VerificationCode string
	CreatedAt        time.Time
}

// Identity projects the account into session token claims.
func (u *User) Identity() session.Identity {
	return session.Identity{
		Subject:   u.ID.String(),
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

// Verified reports whether the account has confirmed its email.
func (u *User) Verified() bool {
	return u.VerifiedAt != nil
}

// Storage is the user store contract. Implementations map unique-index
// violations on email to ErrEmailTaken and missing rows to ErrUserNotFound
// so the service can branch on sentinel errors alone. The email unique
// index is the correctness backstop for concurrent federated signups.
type Storage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// LinkGoogleID attaches a provider subject id to an existing account.
	LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error

	// ResetPendingRegistration overwrites name, password hash and
	// verification code for a not-yet-verified account in one update.
	ResetPendingRegistration(ctx context.Context, id uuid.UUID, name string, passwordHash []byte, code string) error

	// MarkVerified sets the verification timestamp and clears the
	// outstanding code in one update.
	MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error

	// AddSubscriber adds the email to the newsletter list, idempotently.
	AddSubscriber(ctx context.Context, email string) error
}

// FederatedProfile is the provider-verified identity handed to
// AuthenticateFederated after a successful OAuth exchange.
type FederatedProfile struct {
	Provider      string
	SubjectID     string
	Email         string
	Name          string
	AvatarURL     string
	EmailVerified bool
}
