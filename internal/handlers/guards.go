package handlers

import (
	"net/http"

	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/metrics"
	"github.com/churchsite/backend/internal/middleware"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"go.uber.org/zap"
)

// Guards holds the stages shared by every resource route
type Guards struct {
	// Strict rejects requests without a valid token
	Strict func(http.Handler) http.Handler
	// Lenient lets guests through without an identity
	Lenient func(http.Handler) http.Handler
	// Staff admits admins and pastors
	Staff func(http.Handler) http.Handler
	// Admin admits admins only
	Admin func(http.Handler) http.Handler

	Validator *validation.Validator
	Pipeline  *upload.Pipeline
	Logger    *zap.Logger
}

// NewGuards builds the route stages around one token validator
func NewGuards(tokens middleware.TokenValidator, validator *validation.Validator, pipeline *upload.Pipeline, recorder metrics.Recorder, logger *zap.Logger) Guards {
	return Guards{
		Strict:    middleware.RequireAuth(tokens, recorder),
		Lenient:   middleware.OptionalAuth(tokens, recorder),
		Staff:     middleware.RoleMiddleware(auth.StaffRoles...),
		Admin:     middleware.RoleMiddleware(auth.RoleAdmin),
		Validator: validator,
		Pipeline:  pipeline,
		Logger:    logger,
	}
}

// Validate returns the validation stage for set
func (g Guards) Validate(set validation.RuleSet, source validation.Source) func(http.Handler) http.Handler {
	return g.Validator.Middleware(set, source, g.Logger)
}

// Upload returns the upload stage for route
func (g Guards) Upload(route upload.Route) func(http.Handler) http.Handler {
	return upload.Middleware(g.Pipeline, route, g.Logger)
}
