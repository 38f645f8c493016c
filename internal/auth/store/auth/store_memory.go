package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
)

type pairKey struct {
	userID id.UserID
	appID  id.AppID
}

// InMemoryAuthStore holds at most one Auth per (user, app) pair.
type InMemoryAuthStore struct {
	mu     sync.RWMutex
	auths  map[id.AuthID]*models.Auth
	byPair map[pairKey]id.AuthID
}

func New() *InMemoryAuthStore {
	return &InMemoryAuthStore{
		auths:  make(map[id.AuthID]*models.Auth),
		byPair: make(map[pairKey]id.AuthID),
	}
}

// GetOrCreate returns the existing Auth for the pair or inserts one. The
// check and insert happen under one lock. An Auth is never rolled back: it
// carries no grant by itself.
func (s *InMemoryAuthStore) GetOrCreate(_ context.Context, userID id.UserID, appID id.AppID, now time.Time) (*models.Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{userID: userID, appID: appID}
	if authID, ok := s.byPair[key]; ok {
		found := *s.auths[authID]
		return &found, nil
	}
	a := &models.Auth{ID: id.NewAuthID(), UserID: userID, AppID: appID, CreatedAt: now}
	s.auths[a.ID] = a
	s.byPair[key] = a.ID
	created := *a
	return &created, nil
}

func (s *InMemoryAuthStore) FindByID(_ context.Context, authID id.AuthID) (*models.Auth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.auths[authID]; ok {
		found := *a
		return &found, nil
	}
	return nil, fmt.Errorf("auth not found: %w", sentinel.ErrNotFound)
}
