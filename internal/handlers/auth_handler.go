package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// AuthService is the interface that wraps methods for staff login
type AuthService interface {
	// Method Login checks the credentials and returns a signed access token with the account.
	//
	// Unknown emails and wrong passwords both give a 401 "invalid credentials" error.
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	// Method Me returns the account of the identity attached to ctx.
	Me(ctx context.Context) (*models.User, error)
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	BaseHandler
	service    AuthService
	guards     Guards
	loginLimit func(http.Handler) http.Handler
}

// NewAuthHandler creates a new auth handler.
// loginLimit throttles login attempts; nil disables it.
func NewAuthHandler(svc AuthService, guards Guards, loginLimit func(http.Handler) http.Handler) *AuthHandler {
	if loginLimit == nil {
		loginLimit = func(next http.Handler) http.Handler { return next }
	}
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
		loginLimit:  loginLimit,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.With(h.loginLimit, h.guards.Validate(loginRules, validation.JSON)).Post("/login", h.Login)
		r.With(h.guards.Strict).Get("/me", h.Me)
	})
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Exchange email and password for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} Response
// @Failure 400 {object} apperrors.Response
// @Failure 401 {object} apperrors.Response "Invalid credentials"
// @Failure 429 {string} string "Too many requests"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values := validation.FromContext(r.Context())

	res, err := h.service.Login(r.Context(), values.String("email"), values.String("password"))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    res.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	h.RespondJSON(w, http.StatusOK, res)
}

// Me handles GET /api/v1/auth/me
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} apperrors.Response
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context())
	if err != nil {
		h.RespondError(w, err)
		return
	}

	id, _ := auth.FromContext(r.Context())
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"user":     user,
		"identity": id,
	})
}
