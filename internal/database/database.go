package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const duplicateEntryCode = 1062

// Connect opens a MySQL pool, checks it and wraps it in the facade
func Connect(dsn string, logger *zap.Logger) (*DB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := Open(sqlDB, logger)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Open wraps an existing pool in gorm and the facade
func Open(sqlDB *sql.DB, logger *zap.Logger) (*DB, error) {
	g, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return New(g, logger), nil
}

// SQL returns the underlying pool
func (d *DB) SQL() (*sql.DB, error) {
	return d.gorm.DB()
}

// RunMigrations applies the SQL migrations found in dir (or ../dir when started from cmd/)
func RunMigrations(sqlDB *sql.DB, dir string) error {
	driver, err := migratemysql.WithInstance(sqlDB, &migratemysql.Config{
		MigrationsTable: "churchsite_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://" + dir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if _, err := os.Stat("../" + dir); err == nil {
			migrationPath = "file://../" + dir
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// IsDuplicateKey reports whether err is a MySQL duplicate entry error
func IsDuplicateKey(err error) bool {
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryCode
}
