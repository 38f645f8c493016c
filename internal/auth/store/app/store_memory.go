package app

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

// InMemoryAppStore indexes apps by ID and by client_id.
type InMemoryAppStore struct {
	mu         sync.RWMutex
	apps       map[id.AppID]*models.App
	byClientID map[string]id.AppID
}

func New() *InMemoryAppStore {
	return &InMemoryAppStore{
		apps:       make(map[id.AppID]*models.App),
		byClientID: make(map[string]id.AppID),
	}
}

func (s *InMemoryAppStore) Create(ctx context.Context, app *models.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byClientID[app.ClientID]; ok {
		return fmt.Errorf("client_id %q: %w", app.ClientID, sentinel.ErrConflict)
	}
	stored := clone(app)
	s.apps[app.ID] = stored
	s.byClientID[app.ClientID] = app.ID
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.apps, app.ID)
		delete(s.byClientID, app.ClientID)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemoryAppStore) FindByID(_ context.Context, appID id.AppID) (*models.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.apps[appID]; ok {
		return clone(a), nil
	}
	return nil, fmt.Errorf("app not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryAppStore) FindByClientID(_ context.Context, clientID string) (*models.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if appID, ok := s.byClientID[clientID]; ok {
		return clone(s.apps[appID]), nil
	}
	return nil, fmt.Errorf("app not found: %w", sentinel.ErrNotFound)
}

func clone(a *models.App) *models.App {
	c := *a
	c.RedirectURIs = slices.Clone(a.RedirectURIs)
	c.Aud = slices.Clone(a.Aud)
	c.AllowedScopes = slices.Clone(a.AllowedScopes)
	return &c
}
