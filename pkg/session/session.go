// Package session issues and verifies stateless session tokens. A token is
// a signed JWT carrying the user's identity and role; there is no
// server-side session store. Tokens live for a fixed absolute window and
// are transparently re-issued once they pass a sliding refresh threshold,
// so long-lived clients keep a fresh view of name, avatar and role without
// re-authenticating.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSigningKey = errors.New("session: missing signing key")
	ErrInvalidToken      = errors.New("session: invalid token")
	ErrExpiredToken      = errors.New("session: token expired")
	ErrNoSession         = errors.New("session: no session in context")
)

// Role is the closed set of account roles carried in session claims.
// Authorization checks switch over it exhaustively.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored role string onto the closed enum. Unknown values
// degrade to RoleUser so a bad row can never grant elevated access.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Config holds token signing settings.
type Config struct {
	Secret       string        `env:"SESSION_SECRET,required"`
	TokenTTL     time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"168h"`    // 7 days absolute lifetime
	RefreshAfter time.Duration `env:"SESSION_REFRESH_AFTER" envDefault:"24h"` // sliding re-issue threshold
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"artfolio_session"`
}

// Claims is the session token payload. Only client-safe identity fields are
// ever encoded; password hashes and verification codes are not claims.
type Claims struct {
	jwt.RegisteredClaims
	Role      Role   `json:"role"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
}

// Identity is the subset of a user account projected into a token.
type Identity struct {
	Subject   string
	Role      Role
	Name      string
	Email     string
	AvatarURL string
}

// ProfilePatch updates claims on refresh. Nil fields keep their current
// values; Subject is never patchable.
type ProfilePatch struct {
	Name      *string
	AvatarURL *string
	Role      *Role
}

// User is the client-facing session projection.
type User struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"image,omitempty"`
}

// Project strips everything but the client-safe identity fields.
func (c *Claims) Project() User {
	return User{
		ID:        c.Subject,
		Role:      c.Role,
		Name:      c.Name,
		Email:     c.Email,
		AvatarURL: c.AvatarURL,
	}
}

// Manager signs and verifies session tokens with HMAC-SHA256.
type Manager struct {
	secret       []byte
	tokenTTL     time.Duration
	refreshAfter time.Duration
	cookieName   string
	now          func() time.Time
}

// ManagerOption configures a Manager during construction.
type ManagerOption func(*Manager)

// WithClock overrides the time source, used by tests to control expiry.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a session token manager from cfg.
func NewManager(cfg Config, opts ...ManagerOption) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}

	m := &Manager{
		secret:       []byte(cfg.Secret),
		tokenTTL:     cfg.TokenTTL,
		refreshAfter: cfg.RefreshAfter,
		cookieName:   cfg.CookieName,
		now:          time.Now,
	}
	if m.tokenTTL <= 0 {
		m.tokenTTL = 7 * 24 * time.Hour
	}
	if m.refreshAfter <= 0 {
		m.refreshAfter = 24 * time.Hour
	}
	if m.cookieName == "" {
		m.cookieName = "artfolio_session"
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// CookieName returns the cookie the middleware reads tokens from.
func (m *Manager) CookieName() string { return m.cookieName }

// Issue signs a fresh token for the identity with the absolute lifetime.
func (m *Manager) Issue(id Identity) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
		Role:      id.Role,
		Name:      id.Name,
		Email:     id.Email,
		AvatarURL: id.AvatarURL,
	}
	return m.sign(claims)
}

// Refresh re-issues a token from existing claims, applying the patch.
// Subject and role are preserved unless the patch carries a role. The
// issued-at and expiry are re-stamped, which is what makes the session
// sliding.
func (m *Manager) Refresh(claims *Claims, patch ProfilePatch) (string, error) {
	id := Identity{
		Subject:   claims.Subject,
		Role:      claims.Role,
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: claims.AvatarURL,
	}
	if patch.Name != nil {
		id.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		id.AvatarURL = *patch.AvatarURL
	}
	if patch.Role != nil {
		id.Role = *patch.Role
	}
	return m.Issue(id)
}

// NeedsRefresh reports whether the token has crossed the sliding
// threshold and should be re-issued on the next response.
func (m *Manager) NeedsRefresh(claims *Claims) bool {
	if claims.IssuedAt == nil {
		return true
	}
	return m.now().Sub(claims.IssuedAt.Time) >= m.refreshAfter
}

// Verify parses and validates a token, returning its claims.
func (m *Manager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return signed, nil
}
