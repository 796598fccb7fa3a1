package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glefebvre/catalog-console/internal/config"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

// Initialize opens the configured database and runs migrations
func Initialize() error {
	cfg := config.Get()

	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return err
	}

	conn, err := Open(dialector, cfg.GetDatabaseLogLevel())
	if err != nil {
		return err
	}

	if cfg.Database.Driver == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	db = conn
	return nil
}

// Open connects with the given dialector and migrates the console tables
func Open(dialector gorm.Dialector, logLevel string) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormAdapter(logger.DatabaseLogger(), logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return conn, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Path); dir != "." && cfg.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Get returns the database instance
func Get() *gorm.DB {
	return db
}

// HealthCheck verifies database connectivity
func HealthCheck() error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

// Migrate creates or updates the console tables
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.ConsoleState{},
		&models.EditLog{},
	)
}
