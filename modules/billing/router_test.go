package billing_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/artfolio/artfolio/modules/billing"
	"github.com/artfolio/artfolio/pkg/session"
)

func newTestHandler(t *testing.T, store *mockStore) (http.Handler, *session.Manager) {
	t.Helper()
	mgr, err := session.NewManager(session.Config{Secret: "test-secret"})
	require.NoError(t, err)

	svc := billing.NewService(store)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return billing.NewHandler(svc, mgr, log).Handle(), mgr
}

func tokenFor(t *testing.T, mgr *session.Manager, role session.Role) string {
	t.Helper()
	token, err := mgr.Issue(session.Identity{Subject: uuid.NewString(), Role: role})
	require.NoError(t, err)
	return token
}

func TestHandler_Report(t *testing.T) {
	t.Parallel()

	t.Run("returns report for admin", func(t *testing.T) {
		t.Parallel()

		jan := date(2024, time.January, 15)
		store := new(mockStore)
		store.On("ListByCreatedRange", mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Transaction{tx(10000, jan, jan)}, nil)

		handler, mgr := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, mgr, session.RoleAdmin))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var report billing.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, []string{"Jan 2024"}, report.Chart.Labels)
		assert.Equal(t, int64(10000), report.Summary.TotalPayments)
	})

	t.Run("date bounds are parsed and passed through", func(t *testing.T) {
		t.Parallel()

		var gotFrom, gotTo *time.Time
		store := new(mockStore)
		store.On("ListByCreatedRange", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				gotFrom, _ = args.Get(1).(*time.Time)
				gotTo, _ = args.Get(2).(*time.Time)
			}).
			Return([]billing.Transaction{}, nil)

		handler, mgr := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodGet, "/?startDate=2024-01-01&endDate=2024-02-29", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, mgr, session.RoleAdmin))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, gotFrom)
		require.NotNil(t, gotTo)
		assert.Equal(t, date(2024, time.January, 1), *gotFrom)
		// End bound covers the whole final day.
		assert.True(t, gotTo.After(date(2024, time.February, 29)))
		assert.True(t, gotTo.Before(date(2024, time.March, 1)))
	})

	t.Run("no data body is distinct from a zero report", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		store.On("ListByCreatedRange", mock.Anything, mock.Anything, mock.Anything).
			Return([]billing.Transaction{}, nil)

		handler, mgr := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, mgr, session.RoleAdmin))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message string         `json:"message"`
			Data    map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Message)
		assert.Empty(t, body.Data)
	})

	t.Run("malformed date", func(t *testing.T) {
		t.Parallel()

		handler, mgr := newTestHandler(t, new(mockStore))

		req := httptest.NewRequest(http.MethodGet, "/?startDate=01-2024", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, mgr, session.RoleAdmin))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		t.Parallel()

		store := new(mockStore)
		handler, mgr := newTestHandler(t, store)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, mgr, session.RoleUser))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		store.AssertNotCalled(t, "ListByCreatedRange", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		handler, _ := newTestHandler(t, new(mockStore))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
