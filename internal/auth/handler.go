package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campusgate/campusgate/internal/platform/httpx"
)

// Handler wires the HTTP login endpoint. A successful login returns the
// bearer token both in the Authorization response header and in the
// JSON body.
type Handler struct {
	logger    *slog.Logger
	verifier  *Verifier
	tokens    *TokenService
	validator *validator.Validate
	// form field names for non-JSON logins.
	usernameField string
	passwordField string
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, verifier *Verifier, tokens *TokenService, usernameField, passwordField string) *Handler {
	if usernameField == "" {
		usernameField = "username"
	}
	if passwordField == "" {
		passwordField = "password"
	}
	return &Handler{
		logger:        logger,
		verifier:      verifier,
		tokens:        tokens,
		validator:     validator.New(),
		usernameField: usernameField,
		passwordField: passwordField,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	TokenType string    `json:"token_type"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeCredentials(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username and password are required")
		return
	}

	principal, err := h.verifier.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		// Every failure reason collapses to the same response so the
		// endpoint cannot be used to enumerate usernames.
		h.logger.Warn("login rejected", slog.Any("reason", err))
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	token, err := h.tokens.Issue(principal)
	if err != nil {
		h.logger.Error("token issuance failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	h.logger.Info("login succeeded", slog.String("username", principal.Username()))
	w.Header().Set("Authorization", "Bearer "+token)
	httpx.JSON(w, http.StatusOK, loginResponse{
		TokenType: "Bearer",
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokens.TTL()).UTC(),
	})
}

func (h *Handler) decodeCredentials(r *http.Request) (loginRequest, error) {
	var req loginRequest
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/json"):
		if err := httpx.DecodeJSON(r, &req); err != nil {
			return req, httpx.ErrValidation
		}
	default:
		if err := r.ParseForm(); err != nil {
			return req, httpx.ErrValidation
		}
		req.Username = r.PostFormValue(h.usernameField)
		req.Password = r.PostFormValue(h.passwordField)
	}
	return req, nil
}
