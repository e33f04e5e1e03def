package design

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/validator"
)

// maxImageSize bounds the multipart form held in memory per upload.
const maxImageSize = 10 << 20

// Handler exposes the design module over HTTP. Browsing is public,
// publishing requires a session.
type Handler struct {
	svc      *Service
	sessions *session.Manager
	logger   *slog.Logger
}

// NewHandler wires the HTTP surface of the design module.
func NewHandler(svc *Service, sessions *session.Manager, log *slog.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: log}
}

// Handle returns the router to mount under /designs.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(h.sessions))
		r.Post("/", h.publish)
	})

	return r
}

type designResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	ImageURL    string    `json:"image_url"`
	AuthorID    uuid.UUID `json:"author_id"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(d *Design) designResponse {
	return designResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Tags:        d.Tags,
		ImageURL:    d.ImageURL,
		AuthorID:    d.AuthorID,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	claims, err := session.ClaimsFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}
	authorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		respondError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := PublishInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Subcategory: r.FormValue("subcategory"),
		Tags:        splitTags(r.FormValue("tags")),
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer func() { _ = file.Close() }()
		in.Image = file
		in.ImageName = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
	}

	d, err := h.svc.Publish(r.Context(), authorID, in)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondError(w, http.StatusBadRequest, verrs.Error())
			return
		}
		h.logger.Error("failed to publish design", logger.Component("design"), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, toResponse(d))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid design id")
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDesignNotFound) {
			respondError(w, http.StatusNotFound, "design not found")
			return
		}
		h.logger.Error("failed to get design", logger.Component("design"), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, toResponse(d))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	designs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list designs", logger.Component("design"), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]designResponse, 0, len(designs))
	for i := range designs {
		out = append(out, toResponse(&designs[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{"designs": out})
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
