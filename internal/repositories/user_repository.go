package repositories

import (
	"context"
	"fmt"

	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

const userColumns = `id, email, password_hash, name, role, created_at`

type userRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *userRepository) getOne(ctx context.Context, condition string, arg any) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s LIMIT 1`, userColumns, condition)

	result, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	row := result.First()
	if row == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}

	created, _ := row.Time("created_at")
	return &models.User{
		ID:           row.Int64("id"),
		Email:        row.String("email"),
		PasswordHash: row.String("password_hash"),
		Name:         row.String("name"),
		Role:         auth.Role(row.String("role")),
		CreatedAt:    created,
	}, nil
}

// Create inserts a new user and sets its ID
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	res, err := r.db.Execute(ctx,
		`INSERT INTO users (email, password_hash, name, role) VALUES (?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.Name, string(user.Role),
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("user %q %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = res.LastInsertID
	return nil
}
