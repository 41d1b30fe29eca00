// Package identity owns the per-browser user identifier and the signed cookie that
// names a browser's local storage scope.
package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wichananm65/slopeselector/internal/domain/repository"
)

// StorageKey is the local storage key holding the user id.
const StorageKey = "slopeselector_user_id"

// GetOrCreateUserID returns the user id stored in storage, creating and persisting
// a random one on first use.
func GetOrCreateUserID(ctx context.Context, storage repository.LocalStorage) (string, error) {
	id, ok, err := storage.GetItem(ctx, StorageKey)
	if err != nil {
		return "", errors.Wrap(err, "read user id")
	}
	if ok && id != "" {
		return id, nil
	}

	generated, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "generate user id")
	}
	// a concurrent first use may have stored its own id; whichever landed first wins
	id, err = storage.SetItemIfAbsent(ctx, StorageKey, generated.String())
	if err != nil {
		return "", errors.Wrap(err, "store user id")
	}
	return id, nil
}
