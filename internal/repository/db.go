package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/energy-bills/internal/common"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is the archive handle. PostgreSQL goes through a pgx pool, anything else is
// treated as a SQLite database path.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool
	dialect Dialect
	logger  *slog.Logger
}

// DialectFor reports which backend a DSN selects.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the archive database.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DSN == "" {
		return nil, common.NewAppError("ARCHIVE_ERROR", "empty archive DSN", common.ErrInvalidInput)
	}

	dialect := DialectFor(cfg.DSN)
	logger.Info("repository.open", "dialect", string(dialect))

	if dialect == DialectSQLite {
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("repository.open.failed", "error", err)
			return nil, fmt.Errorf("%w: open sqlite: %v", common.ErrDatabase, err)
		}
		// single writer
		db.SetMaxOpenConns(1)
		return &DB{sql: db, dialect: dialect, logger: logger}, nil
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("repository.open.failed", "error", err)
		return nil, fmt.Errorf("%w: parse dsn: %v", common.ErrDatabase, err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "energy-bills"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("repository.open.failed", "error", err)
		return nil, fmt.Errorf("%w: connect: %v", common.ErrDatabase, err)
	}

	logger.Info("repository.open.ok", "dialect", string(dialect))
	return &DB{sql: stdlib.OpenDBFromPool(pool), pool: pool, dialect: dialect, logger: logger}, nil
}

func (d *DB) Dialect() Dialect { return d.dialect }

// Close closes the database connections gracefully
func (d *DB) Close() {
	if d == nil {
		return
	}
	if err := d.sql.Close(); err != nil {
		d.logger.Error("repository.close.failed", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("repository.closed")
}

// HealthCheck pings the database.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	d.logger.Debug("repository.ping")
	if err := d.sql.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", common.ErrDatabase, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
