package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// InMemoryDSN selects a private in-memory SQLite database.
const InMemoryDSN = ":memory:"

// DB is an ent SQL driver plus whatever owns the underlying connections.
type DB struct {
	drv     *entsql.Driver
	dialect string
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// Dialect returns the ent dialect name of the connection.
func (db *DB) Dialect() string { return db.dialect }

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to PostgreSQL (postgres:// DSNs, through a pgx pool) or to
// SQLite (anything else, e.g. file:results.db or :memory:).
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if isPostgres(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "topiclm-experiments"

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	// Wrap pool as *sql.DB for Ent
	sqlDB := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{
		drv:     entsql.OpenDB(dialect.Postgres, sqlDB),
		dialect: dialect.Postgres,
		pool:    pool,
		logger:  logger,
	}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = InMemoryDSN
	}
	logger.Info("opening database", "dialect", dialect.SQLite, "dsn", dsn)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	// one connection: keeps :memory: databases shared and serialises writers
	sqlDB.SetMaxOpenConns(1)

	pingCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		logger.Error("failed to open database", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return &DB{
		drv:     entsql.OpenDB(dialect.SQLite, sqlDB),
		dialect: dialect.SQLite,
		logger:  logger,
	}, nil
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if db.drv != nil {
		if err := db.drv.Close(); err != nil {
			db.logger.Error("failed to close ent driver", "error", err)
		}
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings the database.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database")
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.drv.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	db.logger.Debug("database ping successful")
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS experiment_run (
		id TEXT PRIMARY KEY,
		experiment TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		jobs INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS job_outcome (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		model_id TEXT NOT NULL,
		corpus TEXT NOT NULL,
		variant TEXT NOT NULL,
		params TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		ppls TEXT NOT NULL,
		times TEXT NOT NULL,
		ave_ppl DOUBLE PRECISION,
		ave_time DOUBLE PRECISION,
		created_at TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS job_outcome_model_id ON job_outcome (model_id)`,
}

// Migrate creates the run store tables if missing.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := db.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	return nil
}
