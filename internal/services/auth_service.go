package services

import (
	"context"
	"errors"
	"strings"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/config"
	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/repositories"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateAccessToken(userID int64, role auth.Role) (string, error)
}

const msgInvalidCredentials = "invalid credentials"

type authService struct {
	repo   UserRepository
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repo UserRepository, tokens TokenIssuer, logger *zap.Logger) *authService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Login checks the credentials and issues an access token.
// Unknown emails and wrong passwords give the same 401.
func (s *authService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthenticated(msgInvalidCredentials)
		}
		return nil, apperrors.Persistence(err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn("login failed", zap.Int64("user_id", user.ID))
		return nil, apperrors.Unauthenticated(msgInvalidCredentials)
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &models.LoginResponse{AccessToken: token, User: user}, nil
}

// Me returns the account behind the request's identity
func (s *authService) Me(ctx context.Context) (*models.User, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperrors.Unauthenticated("authentication required")
	}

	user, err := s.repo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, mapRepoError(err, "user not found", "user not found")
	}
	return user, nil
}

// SeedAdmin creates the configured administrator account if it does not exist yet.
// It does nothing when no admin email is configured.
func (s *authService) SeedAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Email == "" {
		return nil
	}
	email := normalizeEmail(cfg.Email)

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Debug("admin account already exists", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := &models.User{Email: email, PasswordHash: hash, Name: cfg.Name, Role: auth.RoleAdmin}
	if err := s.repo.Create(ctx, admin); err != nil {
		// another instance seeded it first
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil
		}
		return err
	}

	s.logger.Info("admin account created", zap.String("email", email), zap.Int64("user_id", admin.ID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
