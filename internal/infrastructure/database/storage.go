// Package database selects the local storage backend named by configuration.
package database

import (
	"context"
	"database/sql"
	"io"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"

	"github.com/wichananm65/slopeselector/internal/domain/repository"
	"github.com/wichananm65/slopeselector/internal/infrastructure/database/inmemory"
	"github.com/wichananm65/slopeselector/internal/infrastructure/database/postgres"
	"github.com/wichananm65/slopeselector/internal/infrastructure/database/sqlite"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStorage returns the provider for driver and a closer releasing its resources.
func OpenStorage(ctx context.Context, driver, path, databaseURL string) (repository.StorageProvider, io.Closer, error) {
	switch driver {
	case "", DriverMemory:
		return inmemory.NewStorageProvider(), nopCloser{}, nil
	case DriverSQLite:
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case DriverPostgres:
		db, err := openPostgres(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		provider := postgres.NewStorageProvider(db)
		if err := provider.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return provider, db, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", driver)
	}
}

func openPostgres(ctx context.Context, dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}
