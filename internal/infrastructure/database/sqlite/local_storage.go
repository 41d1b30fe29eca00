// Package sqlite provides a file-backed local storage for non-browser front ends.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/wichananm65/slopeselector/internal/domain/repository"
)

// Store persists local storage scopes in a SQLite file.
type Store struct {
	db *sql.DB
}

var _ repository.StorageProvider = (*Store)(nil)

// Open opens (creating if needed) the SQLite file at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "create storage dir")
		}
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS local_storage (
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (scope, key)
	)`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create local_storage table")
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Storage(scope string) repository.LocalStorage {
	return &localStorage{db: s.db, scope: scope}
}

type localStorage struct {
	db    *sql.DB
	scope string
}

func (s *localStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE scope = ? AND key = ?`, s.scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get %q", key)
	}
	return value, true, nil
}

func (s *localStorage) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO local_storage (scope, key, value) VALUES (?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value`, s.scope, key, value)
	if err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (s *localStorage) SetItemIfAbsent(ctx context.Context, key, value string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO local_storage (scope, key, value) VALUES (?, ?, ?)
		ON CONFLICT (scope, key) DO NOTHING`, s.scope, key, value); err != nil {
		return "", errors.Wrapf(err, "insert %q", key)
	}
	stored, ok, err := s.GetItem(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.Errorf("%q vanished after insert", key)
	}
	return stored, nil
}

func (s *localStorage) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE scope = ?`, s.scope); err != nil {
		return errors.Wrap(err, "clear scope")
	}
	return nil
}
