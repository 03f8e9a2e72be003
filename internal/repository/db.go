package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/refund-checklist/internal/common"
)

const (
	// InMemoryDSN keeps the audit store in a single sqlite connection.
	InMemoryDSN = "file::memory:?cache=shared"
	// DefaultSQLiteDSN is used when no DSN is configured.
	DefaultSQLiteDSN = "file:refund-checklist.db?_pragma=busy_timeout(5000)"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the database section of the application config.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		DSN:              c.DSN,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// DB is the audit store handle. Postgres goes through a pgx pool, anything
// else is opened as a modernc sqlite database.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

// Open connects to the configured store and creates the audit tables when
// they are missing.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		db  *DB
		err error
	)
	if common.IsPostgresDSN(cfg.DSN) {
		db, err = openPostgres(ctx, cfg, logger)
	} else {
		db, err = openSQLite(cfg, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "refund-checklist"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return &DB{sql: stdlib.OpenDBFromPool(pool), pool: pool, dialect: dialect.Postgres, logger: logger}, nil
}

func openSQLite(cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	logger.Info("opening sqlite audit store", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection also keeps an in-memory
	// database alive for the life of the handle.
	db.SetMaxOpenConns(1)
	return &DB{sql: db, dialect: dialect.SQLite, logger: logger}, nil
}

// Dialect is the ent dialect name of the store.
func (d *DB) Dialect() string { return d.dialect }

// builder returns an ent SQL builder for the store's dialect.
func (d *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(d.dialect)
}

// Migrate creates the audit tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	b := d.builder()
	runs := d.createTable(tableRuns, []string{"id"},
		b.Column("id").Type("TEXT NOT NULL"),
		b.Column("created_at").Type("TEXT NOT NULL"),
		b.Column("receipt_date").Type("TEXT NOT NULL"),
		b.Column("category").Type("TEXT NOT NULL"),
		b.Column("petitioner").Type("TEXT NOT NULL"),
		b.Column("file_count").Type("INTEGER NOT NULL"),
	)
	results := d.createTable(tableResults, []string{"run_id", "seq"},
		b.Column("run_id").Type("TEXT NOT NULL"),
		b.Column("seq").Type("INTEGER NOT NULL"),
		b.Column("source_file").Type("TEXT NOT NULL"),
		b.Column("item_id").Type("TEXT NOT NULL"),
		b.Column("title").Type("TEXT NOT NULL"),
		b.Column("required").Type("BOOLEAN NOT NULL"),
		b.Column("status").Type("TEXT NOT NULL"),
		b.Column("evidence").Type("TEXT NOT NULL"),
		b.Column("observations").Type("TEXT NOT NULL"),
		b.Column("inferred_item_ids").Type("TEXT NOT NULL"),
	)

	for _, q := range []string{runs, results} {
		d.logger.Debug("applying ddl", "query", q)
		if _, err := d.sql.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	d.logger.Debug("audit schema ready", "dialect", d.dialect)
	return nil
}

// createTable renders CREATE TABLE IF NOT EXISTS with dialect quoting.
func (d *DB) createTable(name string, primaryKey []string, columns ...*entsql.ColumnBuilder) string {
	return d.builder().String(func(b *entsql.Builder) {
		b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(name)
		b.Wrap(func(b *entsql.Builder) {
			for _, c := range columns {
				b.Join(c).Comma()
			}
			b.WriteString("PRIMARY KEY").Wrap(func(b *entsql.Builder) {
				b.IdentComma(primaryKey...)
			})
		})
	})
}

// Close closes the database connections gracefully
func (d *DB) Close() {
	d.logger.Info("closing database connections")
	if err := d.sql.Close(); err != nil {
		d.logger.Error("failed to close database", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	d.logger.Debug("pinging database")
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	if err := d.sql.PingContext(ctx); err != nil {
		d.logger.Error("database ping failed", "error", err)
		return fmt.Errorf("%w: ping: %w", common.ErrDatabase, err)
	}
	d.logger.Debug("database ping successful")
	return nil
}
