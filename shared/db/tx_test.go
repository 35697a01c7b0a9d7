package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

var errAbort = errors.New("abort")

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A single connection keeps the in-memory database shared.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`CREATE TABLE tags (id INTEGER PRIMARY KEY, tag TEXT)`); err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}
	return conn
}

func countTags(t *testing.T, conn *sql.DB) int {
	t.Helper()

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}

func insertTag(ctx context.Context, conn *sql.DB, tag string) error {
	_, err := GetExecutor(ctx, conn).ExecContext(ctx, "INSERT INTO tags (tag) VALUES (?)", tag)
	return err
}

func TestRunInTransaction(t *testing.T) {
	tests := []struct {
		name      string
		fn        func(ctx context.Context, conn *sql.DB) error
		wantErr   bool
		wantCount int
	}{
		{
			name: "commit",
			fn: func(ctx context.Context, conn *sql.DB) error {
				return insertTag(ctx, conn, "go")
			},
			wantCount: 1,
		},
		{
			name: "rollback on error",
			fn: func(ctx context.Context, conn *sql.DB) error {
				if err := insertTag(ctx, conn, "go"); err != nil {
					return err
				}
				return errAbort
			},
			wantErr:   true,
			wantCount: 0,
		},
		{
			name: "nested commit",
			fn: func(ctx context.Context, conn *sql.DB) error {
				if err := insertTag(ctx, conn, "outer"); err != nil {
					return err
				}
				return RunInTransaction(ctx, conn, func(inner context.Context) error {
					return insertTag(inner, conn, "inner")
				})
			},
			wantCount: 2,
		},
		{
			name: "nested failure rolls back everything",
			fn: func(ctx context.Context, conn *sql.DB) error {
				if err := insertTag(ctx, conn, "outer"); err != nil {
					return err
				}
				return RunInTransaction(ctx, conn, func(inner context.Context) error {
					if err := insertTag(inner, conn, "inner"); err != nil {
						return err
					}
					return errAbort
				})
			},
			wantErr:   true,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := setupTestDB(t)

			err := RunInTransaction(context.Background(), conn, func(ctx context.Context) error {
				if _, ok := GetTx(ctx); !ok {
					t.Error("Expected transaction in context")
				}
				return tt.fn(ctx, conn)
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("RunInTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errAbort) {
				t.Errorf("RunInTransaction() error = %v, want %v", err, errAbort)
			}
			if got := countTags(t, conn); got != tt.wantCount {
				t.Errorf("row count = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestRunInTransaction_ReusesOuterTx(t *testing.T) {
	conn := setupTestDB(t)

	err := RunInTransaction(context.Background(), conn, func(outer context.Context) error {
		return RunInTransaction(outer, conn, func(inner context.Context) error {
			outerTx, _ := GetTx(outer)
			innerTx, _ := GetTx(inner)
			if outerTx != innerTx {
				t.Error("Expected nested call to reuse the outer transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}
}

func TestGetExecutor(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()

	if GetExecutor(ctx, conn) != Executor(conn) {
		t.Error("Expected executor to be the database without a transaction")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if GetExecutor(WithTx(ctx, tx), conn) != Executor(tx) {
		t.Error("Expected executor to be the transaction")
	}
}
