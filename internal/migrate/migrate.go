// Package migrate applies the embedded graph schema migrations using Goose.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/emergent-company/typedgraph/internal/config"
	"github.com/emergent-company/typedgraph/migrations"
)

// Module provides the migrator and, when MIGRATE_ON_START is set, applies
// pending migrations before any later OnStart hook (the HTTP server) runs.
var Module = fx.Module("migrate",
	fx.Provide(NewZapLogger),
	fx.Provide(NewMigrator),
	fx.Invoke(RunOnStart),
)

// Migrator handles database migrations.
type Migrator struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewZapLogger builds the logger used for migration output.
func NewZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// NewMigrator creates a Migrator on the connection pool behind db.
func NewMigrator(db *bun.DB, logger *zap.Logger) *Migrator {
	return New(db.DB, logger)
}

// New creates a Migrator for a raw *sql.DB connection.
func New(db *sql.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.Named("migrator"),
	}
}

// RunOnStart registers an OnStart hook applying pending migrations.
func RunOnStart(lc fx.Lifecycle, cfg *config.Config, m *Migrator) {
	if !cfg.MigrateOnStart {
		m.logger.Info("skipping migrations on start")
		return
	}
	lc.Append(fx.Hook{
		OnStart: m.Up,
	})
}

func prepare() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Up runs all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	m.logger.Info("running database migrations")

	if err := prepare(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info("migrations completed successfully")
	return nil
}

// UpTo runs migrations up to a specific version.
func (m *Migrator) UpTo(ctx context.Context, version int64) error {
	m.logger.Info("running database migrations up to version", zap.Int64("version", version))

	if err := prepare(); err != nil {
		return err
	}
	if err := goose.UpToContext(ctx, m.db, ".", version); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info("migrations completed successfully", zap.Int64("version", version))
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down(ctx context.Context) error {
	m.logger.Info("rolling back last migration")

	if err := prepare(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.Info("rollback completed successfully")
	return nil
}

// Status prints the migration status through goose's logger.
func (m *Migrator) Status(ctx context.Context) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

// Version returns the current database version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	if err := prepare(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// Pending lists the embedded migrations, in order, with a version above current.
func Pending(current int64) (goose.Migrations, error) {
	if err := prepare(); err != nil {
		return nil, err
	}
	return goose.CollectMigrations(".", current, goose.MaxVersion)
}
