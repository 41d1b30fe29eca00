package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/wichananm65/slopeselector/internal/domain/repository"
)

const createTable = `CREATE TABLE IF NOT EXISTS local_storage (
	scope TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (scope, key)
)`

// StorageProvider keeps local storage scopes in a Postgres table.
type StorageProvider struct {
	db *sql.DB
}

var _ repository.StorageProvider = (*StorageProvider)(nil)

func NewStorageProvider(db *sql.DB) *StorageProvider {
	return &StorageProvider{db: db}
}

// Migrate makes sure the local_storage table exists.
func (p *StorageProvider) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createTable); err != nil {
		return errors.Wrap(err, "create local_storage table")
	}
	return nil
}

func (p *StorageProvider) Storage(scope string) repository.LocalStorage {
	return &localStorage{db: p.db, scope: scope}
}

type localStorage struct {
	db    *sql.DB
	scope string
}

func (s *localStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE scope = $1 AND key = $2`, s.scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get %q", key)
	}
	return value, true, nil
}

func (s *localStorage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO local_storage (scope, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value`, s.scope, key, value)
	if err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (s *localStorage) SetItemIfAbsent(ctx context.Context, key, value string) (string, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO local_storage (scope, key, value) VALUES ($1, $2, $3)
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
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE scope = $1`, s.scope); err != nil {
		return errors.Wrap(err, "clear scope")
	}
	return nil
}
