// Package sqlite provides a SQLite-backed EAV catalog.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/vnykmshr/pviewgroups/internal/eav/sqlite/migrations"
	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// Store persists the catalog in SQLite. Attribute set and assignment
// mutations are dispatched as catalog events; group writes are not.
type Store struct {
	sqlDB      *sql.DB
	dispatcher catalog.EventDispatcher
}

// Option configures a Store.
type Option func(*Store)

// WithDispatcher sets the dispatcher receiving mutation events.
func WithDispatcher(d catalog.EventDispatcher) Option {
	return func(s *Store) { s.dispatcher = d }
}

// Open opens a SQLite catalog and applies embedded migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{sqlDB: sqlDB}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) dispatch(ctx context.Context, event catalog.Event) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, event)
	}
}

// applyMigrations executes each embedded .sql file at most once.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var applied int
		if err := sqlDB.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, file).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}
		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Stores implements catalog.StoreLister. The admin store is not listed.
func (s *Store) Stores(ctx context.Context) ([]catalog.Store, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, code, name FROM stores WHERE id <> 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var out []catalog.Store
	for rows.Next() {
		var st catalog.Store
		if err := rows.Scan(&st.ID, &st.Code, &st.Name); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// SaveStore inserts or updates a storefront.
func (s *Store) SaveStore(ctx context.Context, st catalog.Store) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if st.ID <= 0 || strings.TrimSpace(st.Code) == "" {
		return fmt.Errorf("store id and code are required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO stores (id, code, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET code = excluded.code, name = excluded.name`,
		st.ID, st.Code, st.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrAlreadyExists
		}
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

var (
	_ catalog.GroupStore     = (*Store)(nil)
	_ catalog.GroupWriter    = (*Store)(nil)
	_ catalog.AttributeStore = (*Store)(nil)
	_ catalog.StoreLister    = (*Store)(nil)
)
