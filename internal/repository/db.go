package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/beanvault/coffee-journal/internal/common"
)

// Open connects the journal store. A postgres:// DSN opens a pgx pool
// (wrapped for database/sql); anything else is treated as a SQLite path,
// which keeps single-user local setups dependency-free.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		logger.Info("connecting to postgres journal store")
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, common.WrapError(err, "parse postgres dsn")
		}
		pc.MaxConns = cfg.MaxConns
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "coffee-journal"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			return nil, common.WrapError(err, "connect postgres")
		}
		return stdlib.OpenDBFromPool(pool), nil
	}

	logger.Info("opening sqlite journal store", "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	// modernc sqlite serializes writes; one writer connection avoids
	// SQLITE_BUSY under the worker pool.
	db.SetMaxOpenConns(1)
	return db, nil
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging journal store")
	if err := db.PingContext(ctx); err != nil {
		logger.Error("journal store ping failed", "error", err)
		return err
	}
	logger.Debug("journal store ping successful")
	return nil
}
