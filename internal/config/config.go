// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	JWT      JWTConfig
	Uploads  UploadsConfig
	Image    ImageConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// UploadsConfig holds settings for the upload pipeline storage
type UploadsConfig struct {
	// Root is the directory stored files are written under, served as /uploads
	Root string
	// TempDir receives incoming files before processing. Empty means os.TempDir().
	TempDir      string
	MaxSize      int64
	AllowedTypes []string
	// SweepSchedule is the cron expression for removing abandoned uploads. "off" disables it.
	SweepSchedule string
	SweepMaxAge   time.Duration
}

// ImageConfig holds default transcoding settings
type ImageConfig struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Format    string
}

// AdminConfig describes the account created at startup when it does not exist yet.
// Seeding is skipped when Email is empty.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Default upload and image values
const (
	DefaultUploadsRoot   = "public/uploads"
	DefaultMaxUploadSize = 5 * 1024 * 1024 // 5MB
	DefaultImageWidth    = 1200
	DefaultImageHeight   = 800
	DefaultImageQuality  = 80
	DefaultImageFormat   = "webp"
	DefaultSweepSchedule = "*/10 * * * *"
	DefaultSweepMaxAge   = time.Hour
)

// DefaultAllowedTypes is the MIME allow-list used when UPLOAD_ALLOWED_TYPES is unset
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	if cfg.Server.Port, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Server.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Default to allow all origins if not specified (for development)
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	// Access token expiry (default: 1 hour)
	accessExpiryStr := os.Getenv("JWT_ACCESS_TOKEN_EXPIRY")
	if accessExpiryStr == "" {
		accessExpiryStr = "1h"
	}
	accessExpiry, err := time.ParseDuration(accessExpiryStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	if err := loadUploads(cfg); err != nil {
		return nil, err
	}

	// Initial admin account (optional)
	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")
	cfg.Admin.Name = os.Getenv("ADMIN_NAME")
	if cfg.Admin.Name == "" {
		cfg.Admin.Name = "Administrator"
	}
	if cfg.Admin.Email != "" && len(cfg.Admin.Password) < 8 {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}

	return cfg, nil
}

// loadUploads fills upload and image settings, all of them optional
func loadUploads(cfg *Config) error {
	var err error

	cfg.Uploads.Root = os.Getenv("UPLOADS_ROOT")
	if cfg.Uploads.Root == "" {
		cfg.Uploads.Root = DefaultUploadsRoot
	}
	cfg.Uploads.TempDir = os.Getenv("UPLOADS_TEMP_DIR")

	cfg.Uploads.SweepSchedule = os.Getenv("UPLOADS_SWEEP_SCHEDULE")
	if cfg.Uploads.SweepSchedule == "" {
		cfg.Uploads.SweepSchedule = DefaultSweepSchedule
	}
	cfg.Uploads.SweepMaxAge = DefaultSweepMaxAge
	if raw := os.Getenv("UPLOADS_SWEEP_MAX_AGE"); raw != "" {
		if cfg.Uploads.SweepMaxAge, err = time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid UPLOADS_SWEEP_MAX_AGE: %w", err)
		}
		if cfg.Uploads.SweepMaxAge <= 0 {
			return fmt.Errorf("invalid UPLOADS_SWEEP_MAX_AGE: must be positive")
		}
	}

	maxSizeStr := os.Getenv("UPLOAD_MAX_SIZE")
	cfg.Uploads.MaxSize = DefaultMaxUploadSize
	if maxSizeStr != "" {
		cfg.Uploads.MaxSize, err = strconv.ParseInt(maxSizeStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
		}
	}

	cfg.Uploads.AllowedTypes = splitList(os.Getenv("UPLOAD_ALLOWED_TYPES"))
	if len(cfg.Uploads.AllowedTypes) == 0 {
		cfg.Uploads.AllowedTypes = append([]string(nil), DefaultAllowedTypes...)
	}

	if cfg.Image.MaxWidth, err = intEnv("IMAGE_MAX_WIDTH", DefaultImageWidth); err != nil {
		return err
	}
	if cfg.Image.MaxHeight, err = intEnv("IMAGE_MAX_HEIGHT", DefaultImageHeight); err != nil {
		return err
	}
	if cfg.Image.Quality, err = intEnv("IMAGE_QUALITY", DefaultImageQuality); err != nil {
		return err
	}
	if cfg.Image.Quality < 1 || cfg.Image.Quality > 100 {
		return fmt.Errorf("invalid IMAGE_QUALITY: must be between 1 and 100")
	}

	cfg.Image.Format = strings.ToLower(os.Getenv("IMAGE_FORMAT"))
	switch cfg.Image.Format {
	case "":
		cfg.Image.Format = DefaultImageFormat
	case "webp", "jpeg", "png":
	default:
		return fmt.Errorf("invalid IMAGE_FORMAT: %s, must be 'webp', 'jpeg' or 'png'", cfg.Image.Format)
	}

	return nil
}

// intEnv reads an integer variable, falling back to def when unset
func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
