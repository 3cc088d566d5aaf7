package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authgate/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrMissingDSN is returned when no storage connection string is configured.
var ErrMissingDSN = errors.New("DATABASE_URL is not set")

// Options tune the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// NewConnection opens the process-wide connection pool and bootstraps the schema.
// Call it once at startup and Close the result on shutdown.
func NewConnection(dsn string, opts Options) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema. Safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	err := db.AutoMigrate(
		&model.Domain{},
		&model.AdminRole{},
		&model.AdminRoleAssignment{},
		&model.Seller{},
		&model.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// A plain unique index treats NULL domain_ids as distinct; coalesce so an
	// unscoped assignment can exist only once per (user, role).
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_admin_role_assignment_triple
		ON admin_role_assignments (user_id, role_id, COALESCE(domain_id, '00000000-0000-0000-0000-000000000000'::uuid))`).Error; err != nil {
		return fmt.Errorf("create assignment unique index: %w", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_sellers_email_lower ON sellers (LOWER(email))`).Error; err != nil {
		return fmt.Errorf("create seller email index: %w", err)
	}
	return nil
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
