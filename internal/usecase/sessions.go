package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/wichananm65/slopeselector/internal/domain/repository"
	"github.com/wichananm65/slopeselector/internal/identity"
)

// Sessions keeps one Controller per local storage scope.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	// first use of a scope is resolved once even under concurrent requests
	creating singleflight.Group

	storage        repository.StorageProvider
	repo           repository.RecommendationRepository
	log            logrus.FieldLogger
	refreshTimeout time.Duration
	now            func() time.Time
}

type sessionEntry struct {
	controller *Controller
	lastSeen   time.Time
}

func NewSessions(storage repository.StorageProvider, repo repository.RecommendationRepository, log logrus.FieldLogger, refreshTimeout time.Duration) *Sessions {
	return &Sessions{
		entries:        make(map[string]*sessionEntry),
		storage:        storage,
		repo:           repo,
		log:            log,
		refreshTimeout: refreshTimeout,
		now:            time.Now,
	}
}

// Controller returns the controller for scope, creating it (and the scope's user id)
// on first use.
func (s *Sessions) Controller(ctx context.Context, scope string) (*Controller, error) {
	if c, ok := s.lookup(scope); ok {
		return c, nil
	}

	v, err, _ := s.creating.Do(scope, func() (interface{}, error) {
		if c, ok := s.lookup(scope); ok {
			return c, nil
		}
		userID, err := identity.GetOrCreateUserID(ctx, s.storage.Storage(scope))
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		c := NewController(userID, s.repo, s.log, s.refreshTimeout)
		s.entries[scope] = &sessionEntry{controller: c, lastSeen: s.now()}
		s.log.WithFields(logrus.Fields{"scope": scope, "user_id": userID}).Debug("session created")
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Controller), nil
}

func (s *Sessions) lookup(scope string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[scope]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.controller, true
}

// Sweep drops controllers not used for longer than idle and returns how many were
// dropped. Local storage is untouched, so a returning browser keeps its user id.
func (s *Sessions) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	dropped := 0
	for scope, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, scope)
			dropped++
		}
	}
	return dropped
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
