package db

import (
	"context"
	"database/sql"
)

// Dialect identifies the SQL flavour spoken by a Database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
	Dialect() Dialect

	// CreateSchema creates the blog tables when they do not exist yet.
	CreateSchema(ctx context.Context) error
}
