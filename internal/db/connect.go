package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PayRam/go-dbclient/config"
	"github.com/PayRam/go-dbclient/internal/migration"
	"github.com/go-gormigrate/gormigrate/v2"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	defaultConnectTimeout = 5 * time.Second
	slowStatementLimit    = 500 * time.Millisecond
)

// InitDB opens the pool described by cfg and runs migrations
func InitDB(cfg config.Database, logger *zap.Logger) (*gorm.DB, error) {
	db, err := Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, logger); err != nil {
		_ = Shutdown(db)
		return nil, err
	}

	return db, nil
}

// Open connects to the store, sizes the pool and verifies the connection
func Open(cfg config.Database, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.Path)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewLogger(logger, slowStatementLimit)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	maxOpen, maxIdle, idleTimeout := cfg.PoolMax, cfg.PoolMin, cfg.IdleTimeout
	if cfg.Driver == config.DriverSQLite && isMemory(cfg.Path) {
		// each connection to an in-memory sqlite database sees its own empty database
		maxOpen, maxIdle, idleTimeout = 1, 1, 0
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxIdleTime(idleTimeout)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", maxOpen),
		zap.Int("max_idle_conns", maxIdle),
	)

	return db, nil
}

// Migrate runs every pending schema migration
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, migration.All())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations applied", zap.Int("migrations", len(migration.All())))
	return nil
}

// HealthCheck verifies that the pool can still reach the store
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the pool. Operations issued afterwards fail with a store error.
func Shutdown(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	return sqlDB.Close()
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
