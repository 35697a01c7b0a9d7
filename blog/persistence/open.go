package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/shared/db"
	"github.com/sun-exploit/cblog/shared/db/postgres"
	"github.com/sun-exploit/cblog/shared/db/sqlite"
)

// Backend names accepted in Options.
const (
	BackendCDB      = "cdb"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options locates a repository.
type Options struct {
	Backend string
	// Path is the database file of the cdb and sqlite backends.
	Path string
	// DatabaseURL is the connection string of the postgres backend.
	DatabaseURL string
}

// Location describes where the repository lives, without credentials.
func (o Options) Location() string {
	if o.Backend != BackendPostgres {
		return o.Path
	}
	u, err := url.Parse(o.DatabaseURL)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}

// Open returns a read-only repository for the configured backend. Every
// failure is reported as *domain.OpenError.
func Open(ctx context.Context, opts Options) (domain.PostRepository, error) {
	switch opts.Backend {
	case BackendCDB:
		return OpenCDB(opts.Path)
	case BackendSQLite, BackendPostgres:
		return openSQL(ctx, opts, false)
	default:
		return nil, unknownBackend(opts)
	}
}

// OpenStore returns a writable repository for the configured backend.
func OpenStore(ctx context.Context, opts Options) (domain.PostStore, error) {
	switch opts.Backend {
	case BackendCDB:
		return OpenCDBStore(opts.Path)
	case BackendSQLite, BackendPostgres:
		repo, err := openSQL(ctx, opts, true)
		if err != nil {
			return nil, err
		}
		return &SQLPostStore{SQLPostRepository: repo}, nil
	default:
		return nil, unknownBackend(opts)
	}
}

// Create initializes an empty repository. File backends refuse to overwrite
// an existing file.
func Create(ctx context.Context, opts Options) error {
	switch opts.Backend {
	case BackendCDB:
		return CreateCDB(opts.Path)
	case BackendSQLite:
		if _, err := os.Stat(opts.Path); err == nil {
			return fmt.Errorf("database %s already exists", opts.Path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat database: %w", err)
		}
		return createSchema(ctx, sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: opts.Path, Mode: sqlite.ModeCreate}))
	case BackendPostgres:
		return createSchema(ctx, postgres.NewPostgresDB(&postgres.PostgresConfig{URL: opts.DatabaseURL}))
	default:
		return unknownBackend(opts)
	}
}

func createSchema(ctx context.Context, database db.Database) error {
	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close()
	return database.CreateSchema(ctx)
}

func newDatabase(opts Options, write bool) db.Database {
	if opts.Backend == BackendPostgres {
		return postgres.NewPostgresDB(&postgres.PostgresConfig{URL: opts.DatabaseURL, ReadOnly: !write})
	}

	mode := sqlite.ModeReadOnly
	if write {
		mode = sqlite.ModeReadWrite
	}
	return sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: opts.Path, Mode: mode})
}

func openSQL(ctx context.Context, opts Options, write bool) (*SQLPostRepository, error) {
	database := newDatabase(opts, write)
	if err := database.Connect(); err != nil {
		return nil, &domain.OpenError{Backend: opts.Backend, Location: opts.Location(), Err: err}
	}

	repo := NewSQLPostRepository(database)
	if err := repo.probe(ctx); err != nil {
		repo.Close()
		return nil, &domain.OpenError{Backend: opts.Backend, Location: opts.Location(), Err: err}
	}
	return repo, nil
}

func unknownBackend(opts Options) error {
	return &domain.OpenError{
		Backend:  opts.Backend,
		Location: opts.Location(),
		Err:      fmt.Errorf("unknown backend %q", opts.Backend),
	}
}
