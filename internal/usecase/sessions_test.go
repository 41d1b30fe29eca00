package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wichananm65/slopeselector/internal/domain/repository"
	"github.com/wichananm65/slopeselector/internal/identity"
	"github.com/wichananm65/slopeselector/internal/infrastructure/database/inmemory"
)

func TestSessions_ControllerPerScope(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorageProvider()
	sessions := NewSessions(storage, &fakeRepo{}, quietLogger(), time.Second)

	a1, err := sessions.Controller(ctx, "browser-a")
	if err != nil {
		t.Fatalf("controller failed: %v", err)
	}
	a2, _ := sessions.Controller(ctx, "browser-a")
	b, _ := sessions.Controller(ctx, "browser-b")

	if a1 != a2 {
		t.Fatalf("expected the same controller for the same scope")
	}
	if a1 == b || a1.UserID() == b.UserID() {
		t.Fatalf("expected distinct controllers and user ids per scope")
	}
	stored, _, _ := storage.Storage("browser-a").GetItem(ctx, identity.StorageKey)
	if stored != a1.UserID() {
		t.Fatalf("expected controller user id %q to come from storage, got %q", a1.UserID(), stored)
	}
}

func TestSessions_SweepKeepsUserID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions := NewSessions(inmemory.NewStorageProvider(), &fakeRepo{}, quietLogger(), time.Second)
	sessions.now = func() time.Time { return now }

	first, _ := sessions.Controller(ctx, "browser-a")
	now = now.Add(2 * time.Hour)
	sessions.Controller(ctx, "browser-b")

	if dropped := sessions.Sweep(time.Hour); dropped != 1 {
		t.Fatalf("expected one idle session dropped, got %d", dropped)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected one live session, got %d", sessions.Len())
	}

	again, _ := sessions.Controller(ctx, "browser-a")
	if again == first {
		t.Fatalf("expected a fresh controller after sweep")
	}
	if again.UserID() != first.UserID() {
		t.Fatalf("user id must survive a sweep, got %q want %q", again.UserID(), first.UserID())
	}
}

// slowStorage delays reads so concurrent first uses of a scope overlap.
type slowStorage struct {
	repository.StorageProvider
	delay time.Duration
}

func (s slowStorage) Storage(scope string) repository.LocalStorage {
	return slowScope{LocalStorage: s.StorageProvider.Storage(scope), delay: s.delay}
}

type slowScope struct {
	repository.LocalStorage
	delay time.Duration
}

func (s slowScope) GetItem(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(s.delay)
	return s.LocalStorage.GetItem(ctx, key)
}

func TestSessions_ConcurrentFirstUseAgreesWithStorage(t *testing.T) {
	ctx := context.Background()
	storage := slowStorage{StorageProvider: inmemory.NewStorageProvider(), delay: 5 * time.Millisecond}
	sessions := NewSessions(storage, &fakeRepo{}, quietLogger(), time.Second)

	const n = 8
	controllers := make([]*Controller, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := sessions.Controller(ctx, "browser-b")
			if err != nil {
				t.Errorf("controller failed: %v", err)
				return
			}
			controllers[i] = c
		}(i)
	}
	wg.Wait()

	stored, _, _ := storage.Storage("browser-b").GetItem(ctx, identity.StorageKey)
	for i, c := range controllers {
		if c != controllers[0] {
			t.Fatalf("expected one controller for the scope, call %d got another", i)
		}
	}
	if controllers[0].UserID() != stored {
		t.Fatalf("controller user id %q differs from stored id %q", controllers[0].UserID(), stored)
	}
}
