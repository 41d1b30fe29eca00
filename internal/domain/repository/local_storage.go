package repository

import "context"

// LocalStorage is one browser-like key-value scope.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	// SetItemIfAbsent stores value only when key has no value yet and returns the
	// value held afterwards.
	SetItemIfAbsent(ctx context.Context, key, value string) (string, error)
	Clear(ctx context.Context) error
}

// StorageProvider hands out LocalStorage scopes, one per browser (or per CLI profile).
type StorageProvider interface {
	Storage(scope string) LocalStorage
}
