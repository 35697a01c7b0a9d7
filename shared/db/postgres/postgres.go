// Package postgres connects the relational backend to PostgreSQL through a
// pgx pool exposed as a database/sql handle.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sun-exploit/cblog/shared/db"
)

const (
	maxConns          = 10
	minConns          = 1
	maxConnLifetime   = 60 * time.Minute
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

type PostgresConfig struct {
	URL string
	// ReadOnly makes every transaction of the pool read-only.
	ReadOnly bool
}

// PostgresDB implements the db.Database interface for PostgreSQL
type PostgresDB struct {
	url      string
	readOnly bool
	pool     *pgxpool.Pool
	db       *sql.DB
}

var _ db.Database = (*PostgresDB)(nil)

func NewPostgresDB(cfg *PostgresConfig) *PostgresDB {
	return &PostgresDB{
		url:      cfg.URL,
		readOnly: cfg.ReadOnly,
	}
}

func (p *PostgresDB) poolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(p.url)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLifetime
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.HealthCheckPeriod = healthCheckPeriod
	cfg.ConnConfig.ConnectTimeout = connectTimeout
	if p.readOnly {
		cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	}
	return cfg, nil
}

// Connect creates the pool and checks that the server answers.
func (p *PostgresDB) Connect() error {
	if p.db != nil {
		return fmt.Errorf("database already connected")
	}

	cfg, err := p.poolConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), pingTimeout)
	defer cancelPing()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	p.pool = pool
	p.db = stdlib.OpenDBFromPool(pool)
	return nil
}

// CreateSchema creates the blog tables inside a single transaction.
func (p *PostgresDB) CreateSchema(ctx context.Context) error {
	if p.db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.RunInTransaction(ctx, p.db, func(ctx context.Context) error {
		for _, stmt := range schema {
			if _, err := db.GetExecutor(ctx, p.db).ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
		}
		return nil
	})
}

func (p *PostgresDB) Close() error {
	if p.db == nil {
		return nil
	}

	err := p.db.Close()
	p.pool.Close()
	p.db = nil
	p.pool = nil
	return err
}

func (p *PostgresDB) DB() *sql.DB {
	return p.db
}

func (p *PostgresDB) Dialect() db.Dialect {
	return db.Postgres
}
