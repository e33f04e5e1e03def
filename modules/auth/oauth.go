package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ProviderAdapter hides provider-specific OAuth details behind a
// normalized profile.
type ProviderAdapter interface {
	ProviderID() string
	AuthURL(state string) string
	ResolveProfile(ctx context.Context, code string) (FederatedProfile, error)
}

// StateStore persists one-time CSRF state tokens. ConsumeState must be
// atomic so a state can never validate twice, and must return
// ErrInvalidOAuthState for unknown or expired states.
type StateStore interface {
	StoreState(ctx context.Context, state string, ttl time.Duration) error
	ConsumeState(ctx context.Context, state string) error
}

// OAuthFlow drives the authorization-code dance for one provider and
// hands the resolved profile to the auth service for reconciliation.
type OAuthFlow struct {
	adapter  ProviderAdapter
	states   StateStore
	svc      *Service
	logger   *slog.Logger
	stateTTL time.Duration
}

// OAuthOption configures an OAuthFlow.
type OAuthOption func(*OAuthFlow)

// WithOAuthLogger sets the flow logger.
func WithOAuthLogger(l *slog.Logger) OAuthOption {
	return func(f *OAuthFlow) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithStateTTL sets the lifetime of CSRF state tokens.
func WithStateTTL(ttl time.Duration) OAuthOption {
	return func(f *OAuthFlow) {
		if ttl > 0 {
			f.stateTTL = ttl
		}
	}
}

// NewOAuthFlow creates the flow. Defaults: 10 minute state TTL.
func NewOAuthFlow(adapter ProviderAdapter, states StateStore, svc *Service, opts ...OAuthOption) *OAuthFlow {
	f := &OAuthFlow{
		adapter:  adapter,
		states:   states,
		svc:      svc,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BeginAuth generates a CSRF state token and returns the provider
// authorization URL carrying it.
func (f *OAuthFlow) BeginAuth(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := f.states.StoreState(ctx, state, f.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return f.adapter.AuthURL(state), nil
}

// CompleteAuth validates the callback and reconciles the provider profile
// to a local account. The state is consumed first so a replayed callback
// fails before any provider traffic.
func (f *OAuthFlow) CompleteAuth(ctx context.Context, code, state string) (*User, error) {
	if err := f.states.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, ErrInvalidOAuthState) {
			return nil, ErrInvalidOAuthState
		}
		return nil, fmt.Errorf("failed to validate state: %w", err)
	}

	profile, err := f.adapter.ResolveProfile(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidOAuthCode) {
			return nil, ErrInvalidOAuthCode
		}
		return nil, fmt.Errorf("failed to resolve provider profile: %w", err)
	}

	// Unverified provider emails could take over an existing local account.
	if !profile.EmailVerified {
		return nil, ErrUnverifiedProviderEmail
	}

	return f.svc.AuthenticateFederated(ctx, profile)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
