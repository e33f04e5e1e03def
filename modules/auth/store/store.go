// Package store provides the Postgres and Redis persistence behind the
// auth module.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artfolio/artfolio/modules/auth"
	"github.com/artfolio/artfolio/pkg/pg"
)

var _ auth.Storage = (*UserStore)(nil)

// UserStore persists accounts in Postgres. The unique index on email is
// what turns concurrent signups for one address into ErrEmailTaken.
type UserStore struct {
	db *pgxpool.Pool
}

// NewUserStore creates a Postgres-backed user store.
func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, name, password_hash, google_id, role, avatar_url, verified_at, verification_code, created_at`

func (s *UserStore) CreateUser(ctx context.Context, user *auth.User) error {
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, nullable(user.GoogleID),
		user.Role, user.AvatarURL, user.VerifiedAt, user.VerificationCode, user.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKey(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, id))
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, email))
}

func (s *UserStore) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	query := `UPDATE users SET google_id = $2 WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, googleID)
	if err != nil {
		return fmt.Errorf("failed to link google id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) ResetPendingRegistration(ctx context.Context, id uuid.UUID, name string, passwordHash []byte, code string) error {
	// Guarded on verified_at so a verified account can never be overwritten.
	query := `UPDATE users
			  SET name = $2, password_hash = $3, verification_code = $4
			  WHERE id = $1 AND verified_at IS NULL`

	tag, err := s.db.Exec(ctx, query, id, name, passwordHash, code)
	if err != nil {
		return fmt.Errorf("failed to reset pending registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users
			  SET verified_at = $2, verification_code = ''
			  WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) AddSubscriber(ctx context.Context, email string) error {
	query := `INSERT INTO subscribers (email, subscribed_at)
			  VALUES ($1, now())
			  ON CONFLICT (email) DO NOTHING`

	if _, err := s.db.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("failed to add subscriber: %w", err)
	}
	return nil
}

type row interface {
	Scan(dest ...any) error
}

func (s *UserStore) scanUser(r row) (*auth.User, error) {
	var (
		user     auth.User
		googleID *string
	)
	err := r.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &googleID,
		&user.Role, &user.AvatarURL, &user.VerifiedAt, &user.VerificationCode, &user.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if googleID != nil {
		user.GoogleID = *googleID
	}
	return &user, nil
}

// nullable maps empty strings to NULL so the partial unique index on
// google_id ignores unlinked accounts.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
