package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/fx"

	"github.com/emergent-company/typedgraph/internal/config"
	"github.com/emergent-company/typedgraph/pkg/logger"
)

var Module = fx.Module("database",
	fx.Provide(
		NewPgxPool,
		NewBunDB,
		fx.Annotate(
			func(db *bun.DB) bun.IDB { return db },
			fx.As(new(bun.IDB)),
		),
	),
)

// slowQueryThreshold is the duration above which queries are logged at warn level.
const slowQueryThreshold = time.Second

// NewPgxPool creates a new pgx connection pool
func NewPgxPool(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	log = log.With(logger.Scope("database"))

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnIdleTime = cfg.Database.MaxIdleTime

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Create pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database pool created",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("database", cfg.Database.Database),
		slog.Int("max_conns", cfg.Database.MaxOpenConns),
	)

	if err := registerPoolMetrics(prometheus.DefaultRegisterer, pgxPoolStats(pool)); err != nil {
		log.Warn("pool metrics not registered", logger.Error(err))
	}

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database pool")
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

// poolStats is the subset of pgxpool.Stat exported as gauges.
type poolStats struct {
	Total, Acquired, Idle, Max int32
}

func pgxPoolStats(pool *pgxpool.Pool) func() poolStats {
	return func() poolStats {
		s := pool.Stat()
		return poolStats{
			Total:    s.TotalConns(),
			Acquired: s.AcquiredConns(),
			Idle:     s.IdleConns(),
			Max:      s.MaxConns(),
		}
	}
}

var (
	poolTotalDesc    = prometheus.NewDesc("db_pool_total_conns", "Connections currently open", nil, nil)
	poolAcquiredDesc = prometheus.NewDesc("db_pool_acquired_conns", "Connections currently in use", nil, nil)
	poolIdleDesc     = prometheus.NewDesc("db_pool_idle_conns", "Idle connections", nil, nil)
	poolMaxDesc      = prometheus.NewDesc("db_pool_max_conns", "Configured pool size", nil, nil)
)

// poolCollector reads pool statistics at scrape time. Its source is replaced
// whenever a newer pool registers, so the gauges never read a closed pool.
type poolCollector struct {
	mu    sync.RWMutex
	stats func() poolStats
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolTotalDesc
	ch <- poolAcquiredDesc
	ch <- poolIdleDesc
	ch <- poolMaxDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	stats := c.stats
	c.mu.RUnlock()

	s := stats()
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.Total))
	ch <- prometheus.MustNewConstMetric(poolAcquiredDesc, prometheus.GaugeValue, float64(s.Acquired))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.Idle))
	ch <- prometheus.MustNewConstMetric(poolMaxDesc, prometheus.GaugeValue, float64(s.Max))
}

func (c *poolCollector) setSource(stats func() poolStats) {
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
}

// registerPoolMetrics exposes pool statistics on reg. A collector that is
// already registered is pointed at the new source instead.
func registerPoolMetrics(reg prometheus.Registerer, stats func() poolStats) error {
	err := reg.Register(&poolCollector{stats: stats})

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		existing, ok := are.ExistingCollector.(*poolCollector)
		if !ok {
			return err
		}
		existing.setSource(stats)
		return nil
	}
	return err
}

// NewBunDB creates a Bun instance on top of the pgx pool
func NewBunDB(lc fx.Lifecycle, pool *pgxpool.Pool, cfg *config.Config, log *slog.Logger) (*bun.DB, error) {
	log = log.With(logger.Scope("bun"))

	// Convert pgx pool to database/sql compatible connection
	db := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())

	// Add query logging hook if debug enabled
	if cfg.Database.QueryDebug {
		db.AddQueryHook(NewQueryLoggingHook(log))
	}

	log.Info("bun database initialized")

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing bun database")
			return db.Close()
		},
	})

	return db, nil
}

// QueryLoggingHook implements bun.QueryHook for query logging
type QueryLoggingHook struct {
	log *slog.Logger
}

// NewQueryLoggingHook returns a hook logging failed, slow and (at debug) all queries.
func NewQueryLoggingHook(log *slog.Logger) *QueryLoggingHook {
	return &QueryLoggingHook{log: log}
}

func (h *QueryLoggingHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLoggingHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.log.Error("query error",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
			logger.Error(event.Err),
		)
		return
	}

	if duration > slowQueryThreshold {
		h.log.Warn("slow query",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
		)
		return
	}

	h.log.Debug("query",
		slog.String("query", event.Query),
		slog.Duration("duration", duration),
	)
}

// SafeTx wraps a bun.Tx to make Rollback safe to call after Commit.
//
// Calling ROLLBACK TO SAVEPOINT after RELEASE SAVEPOINT aborts the outer
// transaction, so Rollback becomes a no-op once Commit succeeded.
//
//	tx, err := BeginSafeTx(ctx, db)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	// ... do work ...
//
//	return tx.Commit()
type SafeTx struct {
	bun.Tx
	committed bool
}

// BeginSafeTx starts a new transaction (or a savepoint when db is already a transaction).
func BeginSafeTx(ctx context.Context, db bun.IDB) (*SafeTx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &SafeTx{Tx: tx}, nil
}

// Commit commits the transaction and marks it as committed.
func (tx *SafeTx) Commit() error {
	if tx.committed {
		return nil
	}
	err := tx.Tx.Commit()
	if err == nil {
		tx.committed = true
	}
	return err
}

// Rollback rolls back the transaction only if it hasn't been committed.
func (tx *SafeTx) Rollback() error {
	if tx.committed {
		return nil
	}
	return tx.Tx.Rollback()
}
