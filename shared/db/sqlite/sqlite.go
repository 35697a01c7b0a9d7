package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/sun-exploit/cblog/shared/db"
	_ "modernc.org/sqlite"
)

// Mode controls how the database file is opened.
type Mode string

const (
	// ModeReadOnly fails when the file does not exist and refuses writes.
	ModeReadOnly Mode = "ro"
	// ModeReadWrite fails when the file does not exist.
	ModeReadWrite Mode = "rw"
	// ModeCreate creates the file when it does not exist.
	ModeCreate Mode = "rwc"

	memoryPath = ":memory:"
)

type SQLiteConfig struct {
	Path string
	Mode Mode
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	mode   Mode
	db     *sql.DB
}

var _ db.Database = (*SQLiteDB)(nil)

func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeReadOnly
	}
	return &SQLiteDB{
		dbPath: cfg.Path,
		mode:   mode,
	}
}

// dsn builds a modernc URI filename. Pragmas passed as _pragma parameters are
// applied to every pooled connection. The default rollback journal is kept so
// that read-only handles never need to create side files.
func (s *SQLiteDB) dsn() string {
	pragmas := []string{
		"foreign_keys(1)",
		"busy_timeout(5000)",
	}

	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}

	if s.dbPath == memoryPath {
		return memoryPath + "?" + q.Encode()
	}

	q.Set("mode", string(s.mode))
	return "file:" + strings.ReplaceAll(s.dbPath, "?", "%3f") + "?" + q.Encode()
}

// Connect opens a connection to the SQLite database
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	conn, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if s.dbPath == memoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = conn
	return nil
}

// CreateSchema creates the blog tables inside a single transaction.
func (s *SQLiteDB) CreateSchema(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.RunInTransaction(ctx, s.db, func(ctx context.Context) error {
		for _, stmt := range schema {
			if _, err := db.GetExecutor(ctx, s.db).ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
		}
		return nil
	})
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

func (s *SQLiteDB) Dialect() db.Dialect {
	return db.SQLite
}
