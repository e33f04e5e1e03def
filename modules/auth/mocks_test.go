package auth_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/artfolio/artfolio/modules/auth"
	"github.com/artfolio/artfolio/pkg/email"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) CreateUser(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *mockStorage) GetUserByEmail(ctx context.Context, emailAddr string) (*auth.User, error) {
	args := m.Called(ctx, emailAddr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *mockStorage) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	args := m.Called(ctx, id, googleID)
	return args.Error(0)
}

func (m *mockStorage) ResetPendingRegistration(ctx context.Context, id uuid.UUID, name string, passwordHash []byte, code string) error {
	args := m.Called(ctx, id, name, passwordHash, code)
	return args.Error(0)
}

func (m *mockStorage) MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockStorage) AddSubscriber(ctx context.Context, emailAddr string) error {
	args := m.Called(ctx, emailAddr)
	return args.Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type mockStateStore struct {
	mock.Mock
}

func (m *mockStateStore) StoreState(ctx context.Context, state string, ttl time.Duration) error {
	args := m.Called(ctx, state, ttl)
	return args.Error(0)
}

func (m *mockStateStore) ConsumeState(ctx context.Context, state string) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

type mockAdapter struct {
	mock.Mock
}

func (m *mockAdapter) ProviderID() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockAdapter) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockAdapter) ResolveProfile(ctx context.Context, code string) (auth.FederatedProfile, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(auth.FederatedProfile), args.Error(1)
}
