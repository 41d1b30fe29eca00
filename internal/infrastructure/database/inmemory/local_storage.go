package inmemory

import (
	"context"
	"sync"

	"github.com/wichananm65/slopeselector/internal/domain/repository"
)

// StorageProvider is an in-memory implementation of repository.StorageProvider.
// Contents live as long as the process.
type StorageProvider struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

var _ repository.StorageProvider = (*StorageProvider)(nil)

func NewStorageProvider() *StorageProvider {
	return &StorageProvider{scopes: make(map[string]map[string]string)}
}

func (p *StorageProvider) Storage(scope string) repository.LocalStorage {
	return &localStorage{provider: p, scope: scope}
}

type localStorage struct {
	provider *StorageProvider
	scope    string
}

func (s *localStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.provider.mu.RLock()
	defer s.provider.mu.RUnlock()

	items, ok := s.provider.scopes[s.scope]
	if !ok {
		return "", false, nil
	}
	v, ok := items[key]
	return v, ok, nil
}

func (s *localStorage) SetItem(ctx context.Context, key, value string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	items, ok := s.provider.scopes[s.scope]
	if !ok {
		items = make(map[string]string)
		s.provider.scopes[s.scope] = items
	}
	items[key] = value
	return nil
}

func (s *localStorage) SetItemIfAbsent(ctx context.Context, key, value string) (string, error) {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	items, ok := s.provider.scopes[s.scope]
	if !ok {
		items = make(map[string]string)
		s.provider.scopes[s.scope] = items
	}
	if existing, ok := items[key]; ok {
		return existing, nil
	}
	items[key] = value
	return value, nil
}

func (s *localStorage) Clear(ctx context.Context) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	delete(s.provider.scopes, s.scope)
	return nil
}
