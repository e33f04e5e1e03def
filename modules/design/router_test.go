package design_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/artfolio/artfolio/modules/design"
	"github.com/artfolio/artfolio/pkg/session"
)

func newTestHandler(t *testing.T, storage *mockStorage, uploader *mockUploader) (http.Handler, *session.Manager) {
	t.Helper()
	mgr, err := session.NewManager(session.Config{Secret: "test-secret"})
	require.NoError(t, err)

	svc := design.NewService(storage, uploader)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return design.NewHandler(svc, mgr, log).Handle(), mgr
}

func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "poster.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandler_Publish(t *testing.T) {
	t.Parallel()

	t.Run("authenticated multipart upload", func(t *testing.T) {
		t.Parallel()

		uploader := new(mockUploader)
		uploader.On("Upload", mock.Anything, mock.Anything, "designs", "poster.png", mock.Anything).
			Return("https://cdn.example.com/designs/poster.png", nil)

		storage := new(mockStorage)
		storage.On("CreateDesign", mock.Anything, mock.Anything).Return(nil)

		handler, mgr := newTestHandler(t, storage, uploader)

		authorID := uuid.New()
		token, err := mgr.Issue(session.Identity{Subject: authorID.String(), Role: session.RoleUser})
		require.NoError(t, err)

		body, contentType := multipartBody(t, map[string]string{
			"name":     "Poster",
			"category": "print",
			"tags":     "minimal, print",
		}, true)

		req := httptest.NewRequest(http.MethodPost, "/", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var got struct {
			ID       uuid.UUID `json:"id"`
			Name     string    `json:"name"`
			Tags     []string  `json:"tags"`
			ImageURL string    `json:"image_url"`
			AuthorID uuid.UUID `json:"author_id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Poster", got.Name)
		assert.Equal(t, []string{"minimal", "print"}, got.Tags)
		assert.Equal(t, authorID, got.AuthorID)
		assert.Equal(t, "https://cdn.example.com/designs/poster.png", got.ImageURL)
	})

	t.Run("unauthenticated upload is rejected", func(t *testing.T) {
		t.Parallel()

		handler, _ := newTestHandler(t, new(mockStorage), new(mockUploader))

		body, contentType := multipartBody(t, map[string]string{"name": "Poster", "category": "print"}, true)
		req := httptest.NewRequest(http.MethodPost, "/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing image", func(t *testing.T) {
		t.Parallel()

		handler, mgr := newTestHandler(t, new(mockStorage), new(mockUploader))
		token, err := mgr.Issue(session.Identity{Subject: uuid.NewString(), Role: session.RoleUser})
		require.NoError(t, err)

		body, contentType := multipartBody(t, map[string]string{"name": "Poster", "category": "print"}, false)
		req := httptest.NewRequest(http.MethodPost, "/", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Browse(t *testing.T) {
	t.Parallel()

	t.Run("list with filters", func(t *testing.T) {
		t.Parallel()

		storage := new(mockStorage)
		storage.On("ListDesigns", mock.Anything, design.ListFilter{
			Category: "print",
			Limit:    5,
			Offset:   10,
		}).Return([]design.Design{{ID: uuid.New(), Name: "Poster"}}, nil)

		handler, _ := newTestHandler(t, storage, new(mockUploader))

		req := httptest.NewRequest(http.MethodGet, "/?category=print&limit=5&offset=10", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Designs []json.RawMessage `json:"designs"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Designs, 1)
		storage.AssertExpectations(t)
	})

	t.Run("get by id", func(t *testing.T) {
		t.Parallel()

		d := &design.Design{ID: uuid.New(), Name: "Poster"}
		storage := new(mockStorage)
		storage.On("GetDesignByID", mock.Anything, d.ID).Return(d, nil)

		handler, _ := newTestHandler(t, storage, new(mockUploader))

		req := httptest.NewRequest(http.MethodGet, "/"+d.ID.String(), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		storage := new(mockStorage)
		storage.On("GetDesignByID", mock.Anything, id).Return(nil, design.ErrDesignNotFound)

		handler, _ := newTestHandler(t, storage, new(mockUploader))

		req := httptest.NewRequest(http.MethodGet, "/"+id.String(), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		handler, _ := newTestHandler(t, new(mockStorage), new(mockUploader))

		req := httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
