package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/artfolio/artfolio/modules/auth"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/validator"
)

func googleProfile() auth.FederatedProfile {
	return auth.FederatedProfile{
		Provider:      auth.ProviderGoogle,
		SubjectID:     "google-sub-42",
		Email:         "jane@example.com",
		Name:          "Jane Doe",
		AvatarURL:     "https://lh3.example.com/photo.jpg",
		EmailVerified: true,
	}
}

func TestService_AuthenticateFederated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("links existing account and preserves id and role", func(t *testing.T) {
		t.Parallel()

		existing := &auth.User{
			ID:         uuid.New(),
			Email:      "jane@example.com",
			Name:       "Jane",
			Role:       session.RoleAdmin,
			VerifiedAt: verifiedAt(time.Now()),
		}

		storage := new(mockStorage)
		storage.On("GetUserByEmail", ctx, "jane@example.com").Return(existing, nil)
		storage.On("LinkGoogleID", ctx, existing.ID, "google-sub-42").Return(nil)

		svc := auth.NewService(storage, newSessionManager(t), new(mockSender))
		got, err := svc.AuthenticateFederated(ctx, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, existing.ID, got.ID)
		assert.Equal(t, session.RoleAdmin, got.Role)
		assert.Equal(t, "google-sub-42", got.GoogleID)
		storage.AssertExpectations(t)
	})

	t.Run("already linked account is returned unchanged", func(t *testing.T) {
		t.Parallel()

		existing := &auth.User{
			ID:         uuid.New(),
			Email:      "jane@example.com",
			GoogleID:   "google-sub-42",
			VerifiedAt: verifiedAt(time.Now()),
		}

		storage := new(mockStorage)
		storage.On("GetUserByEmail", ctx, "jane@example.com").Return(existing, nil)

		svc := auth.NewService(storage, newSessionManager(t), new(mockSender))
		got, err := svc.AuthenticateFederated(ctx, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, existing.ID, got.ID)
		storage.AssertNotCalled(t, "LinkGoogleID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email creates a verified account", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		storage := new(mockStorage)
		storage.On("GetUserByEmail", ctx, "jane@example.com").Return(nil, auth.ErrUserNotFound)
		storage.On("CreateUser", ctx, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "jane@example.com" &&
				u.GoogleID == "google-sub-42" &&
				u.Role == session.RoleUser &&
				u.PasswordHash == nil &&
				u.VerifiedAt != nil && u.VerifiedAt.Equal(now)
		})).Return(nil)

		svc := auth.NewService(storage, newSessionManager(t), new(mockSender),
			auth.WithClock(func() time.Time { return now }),
		)
		got, err := svc.AuthenticateFederated(ctx, googleProfile())
		require.NoError(t, err)
		assert.True(t, got.Verified())
		storage.AssertExpectations(t)
	})

	t.Run("lost create race links against the winner", func(t *testing.T) {
		t.Parallel()

		winner := &auth.User{
			ID:         uuid.New(),
			Email:      "jane@example.com",
			VerifiedAt: verifiedAt(time.Now()),
		}

		storage := new(mockStorage)
		storage.On("GetUserByEmail", ctx, "jane@example.com").Return(nil, auth.ErrUserNotFound).Once()
		storage.On("CreateUser", ctx, mock.Anything).Return(auth.ErrEmailTaken)
		storage.On("GetUserByEmail", ctx, "jane@example.com").Return(winner, nil).Once()
		storage.On("LinkGoogleID", ctx, winner.ID, "google-sub-42").Return(nil)

		svc := auth.NewService(storage, newSessionManager(t), new(mockSender))
		got, err := svc.AuthenticateFederated(ctx, googleProfile())
		require.NoError(t, err)
		assert.Equal(t, winner.ID, got.ID)
		assert.Equal(t, "google-sub-42", got.GoogleID)
		storage.AssertExpectations(t)
	})

	t.Run("normalizes provider email", func(t *testing.T) {
		t.Parallel()

		existing := &auth.User{
			ID:         uuid.New(),
			Email:      "jane@example.com",
			GoogleID:   "google-sub-42",
			VerifiedAt: verifiedAt(time.Now()),
		}

		storage := new(mockStorage)
		storage.On("GetUserByEmail", ctx, "jane@example.com").Return(existing, nil)

		profile := googleProfile()
		profile.Email = " Jane@Example.COM "

		svc := auth.NewService(storage, newSessionManager(t), new(mockSender))
		_, err := svc.AuthenticateFederated(ctx, profile)
		require.NoError(t, err)
		storage.AssertExpectations(t)
	})

	t.Run("missing subject id fails validation", func(t *testing.T) {
		t.Parallel()

		profile := googleProfile()
		profile.SubjectID = ""

		svc := auth.NewService(new(mockStorage), newSessionManager(t), new(mockSender))
		_, err := svc.AuthenticateFederated(ctx, profile)
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.Has("subject_id"))
	})
}
