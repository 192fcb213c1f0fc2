// Package testutil provisions throwaway PostgreSQL databases for integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"

	"github.com/emergent-company/typedgraph/internal/config"
	"github.com/emergent-company/typedgraph/internal/migrate"
)

const templateDBName = "typedgraph_test_template"

var (
	templateOnce sync.Once
	templateErr  error
)

// TestDB holds test database resources
type TestDB struct {
	Config  *config.Config
	DB      *bun.DB
	Name    string
	cleanup func()
}

// Close drops the database and releases its connections.
func (t *TestDB) Close() {
	if t.cleanup != nil {
		t.cleanup()
	}
}

// NewTestDB returns a migrated, isolated database for t, or skips t when no
// PostgreSQL server is reachable with the POSTGRES_* settings.
func NewTestDB(t *testing.T, suffix string) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := SetupTestDB(ctx, suffix)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

// SetupTestDB creates a database from a migrated template. The template is
// built once per test binary; every later call is a cheap CREATE DATABASE ... TEMPLATE.
func SetupTestDB(ctx context.Context, suffix string) (*TestDB, error) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	baseCfg, err := config.NewConfig(log)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	templateOnce.Do(func() {
		templateErr = ensureTemplateDB(ctx, baseCfg)
	})
	if templateErr != nil {
		return nil, fmt.Errorf("ensure template db: %w", templateErr)
	}

	name := fmt.Sprintf("typedgraph_test_%s_%d", suffix, time.Now().UnixNano())
	if err := adminExec(ctx, baseCfg, fmt.Sprintf("CREATE DATABASE %s TEMPLATE %s", name, templateDBName)); err != nil {
		return nil, fmt.Errorf("create test db from template: %w", err)
	}

	testCfg := *baseCfg
	testCfg.Database.Database = name

	pool, err := createPool(ctx, &testCfg)
	if err != nil {
		dropDB(context.Background(), baseCfg, name)
		return nil, fmt.Errorf("connect to test db: %w", err)
	}

	db := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())

	return &TestDB{
		Config: &testCfg,
		DB:     db,
		Name:   name,
		cleanup: func() {
			_ = db.Close()
			pool.Close()
			dropDB(context.Background(), baseCfg, name)
		},
	}, nil
}

func ensureTemplateDB(ctx context.Context, baseCfg *config.Config) error {
	adminCfg := *baseCfg
	adminCfg.Database.Database = "postgres"

	adminPool, err := createPool(ctx, &adminCfg)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer adminPool.Close()

	var exists bool
	err = adminPool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", templateDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check template exists: %w", err)
	}
	if !exists {
		if _, err := adminPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", templateDBName)); err != nil {
			return fmt.Errorf("create template db: %w", err)
		}
	}

	templateCfg := *baseCfg
	templateCfg.Database.Database = templateDBName
	templatePool, err := createPool(ctx, &templateCfg)
	if err != nil {
		return fmt.Errorf("connect to template db: %w", err)
	}
	defer templatePool.Close()

	// Up is idempotent, so a template left over from an older run is brought
	// to the current schema version.
	sqldb := stdlib.OpenDBFromPool(templatePool)
	defer sqldb.Close()
	if err := migrate.New(sqldb, zap.NewNop()).Up(ctx); err != nil {
		return fmt.Errorf("migrate template db: %w", err)
	}
	return nil
}

// TruncateTables removes every vertex and edge and resets the id sequences.
func TruncateTables(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewRaw("TRUNCATE TABLE edge, vertex RESTART IDENTITY CASCADE").Exec(ctx); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

func createPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func adminExec(ctx context.Context, baseCfg *config.Config, sql string) error {
	adminCfg := *baseCfg
	adminCfg.Database.Database = "postgres"

	pool, err := createPool(ctx, &adminCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, sql)
	return err
}

func dropDB(ctx context.Context, baseCfg *config.Config, name string) {
	_ = adminExec(ctx, baseCfg, fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid()", name))
	_ = adminExec(ctx, baseCfg, fmt.Sprintf("DROP DATABASE IF EXISTS %s", name))
}
