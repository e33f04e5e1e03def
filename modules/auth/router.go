package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/validator"
)

// Handler exposes the auth module over HTTP.
type Handler struct {
	svc      *Service
	google   *OAuthFlow
	sessions *session.Manager
	logger   *slog.Logger
}

// NewHandler wires the HTTP surface of the auth module.
func NewHandler(svc *Service, google *OAuthFlow, sessions *session.Manager, log *slog.Logger) *Handler {
	return &Handler{svc: svc, google: google, sessions: sessions, logger: log}
}

// Handle returns the router to mount under /auth.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", h.login)
	r.Post("/signup", h.signup)
	r.Put("/signup", h.verify)
	r.Get("/google", h.googleRedirect)
	r.Get("/google/callback", h.googleCallback)

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(h.sessions))
		r.Get("/session", h.getSession)
		r.Patch("/session", h.patchSession)
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeMessage(w, http.StatusBadRequest, verrs.Error())
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidCredentials):
			// One body for both so responses cannot enumerate accounts.
			writeMessage(w, http.StatusUnauthorized, "invalid email or password")
		default:
			h.logger.Error("login failed", logger.Component("auth"), logger.Error(err))
			writeMessage(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.respondWithSession(w, user)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeMessage(w, http.StatusBadRequest, verrs.Error())
		case errors.Is(err, ErrEmailTaken):
			writeMessage(w, http.StatusConflict, "email is already registered")
		default:
			h.logger.Error("signup failed", logger.Component("auth"), logger.Error(err))
			writeMessage(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	status := http.StatusOK
	message := "verification code sent"
	if !reg.EmailSent {
		status = http.StatusAccepted
		message = "account created, but the verification email could not be sent"
	}
	writeJSON(w, status, map[string]any{
		"message": message,
		"user_id": reg.UserID,
	})
}

type verifyRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Code   string    `json:"code"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Verify(r.Context(), req.UserID, req.Code)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeMessage(w, http.StatusBadRequest, verrs.Error())
		case errors.Is(err, ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrInvalidVerificationCode):
			writeMessage(w, http.StatusBadRequest, "invalid verification code")
		default:
			h.logger.Error("verification failed", logger.Component("auth"), logger.Error(err))
			writeMessage(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if !res.WelcomeEmailSent {
		writeMessage(w, http.StatusAccepted, "account verified, but the welcome email could not be sent")
		return
	}
	writeMessage(w, http.StatusOK, "account verified")
}

func (h *Handler) googleRedirect(w http.ResponseWriter, r *http.Request) {
	url, err := h.google.BeginAuth(r.Context())
	if err != nil {
		h.logger.Error("failed to begin google auth", logger.Component("auth"), logger.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeMessage(w, http.StatusBadRequest, "missing code or state")
		return
	}

	user, err := h.google.CompleteAuth(r.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidOAuthState), errors.Is(err, ErrInvalidOAuthCode):
			writeMessage(w, http.StatusUnauthorized, "authentication failed")
		case errors.Is(err, ErrUnverifiedProviderEmail):
			writeMessage(w, http.StatusForbidden, "email not verified with provider")
		default:
			h.logger.Error("google callback failed", logger.Component("auth"), logger.Error(err))
			writeMessage(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.respondWithSession(w, user)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	claims, err := session.ClaimsFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	// Sliding refresh: re-issue the token once it is past the threshold
	// and hand it back on a response header.
	if h.sessions.NeedsRefresh(claims) {
		token, err := h.sessions.Refresh(claims, session.ProfilePatch{})
		if err != nil {
			h.logger.Error("failed to refresh session", logger.Component("auth"), logger.Error(err))
		} else {
			w.Header().Set("X-Session-Token", token)
		}
	}

	writeJSON(w, http.StatusOK, claims.Project())
}

type patchSessionRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *Handler) patchSession(w http.ResponseWriter, r *http.Request) {
	claims, err := session.ClaimsFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req patchSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.sessions.Refresh(claims, session.ProfilePatch{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		h.logger.Error("failed to refresh session", logger.Component("auth"), logger.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	refreshed, err := h.sessions.Verify(token)
	if err != nil {
		h.logger.Error("failed to verify refreshed session", logger.Component("auth"), logger.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: refreshed.Project()})
}

func (h *Handler) respondWithSession(w http.ResponseWriter, user *User) {
	token, err := h.svc.IssueSession(user)
	if err != nil {
		h.logger.Error("failed to issue session", logger.Component("auth"), logger.UserID(user.ID.String()), logger.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token: token,
		User: session.User{
			ID:        user.ID.String(),
			Role:      user.Role,
			Name:      user.Name,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
