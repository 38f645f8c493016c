package oidcauthorization

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

// InMemoryStore links codes and consents to their Auth. CodeID and ConsentID
// are each unique across rows.
type InMemoryStore struct {
	mu        sync.RWMutex
	rows      map[id.OidcAuthorizationID]*models.OidcAuthorization
	byCode    map[id.CodeID]id.OidcAuthorizationID
	byConsent map[id.ConsentID]id.OidcAuthorizationID
}

func New() *InMemoryStore {
	return &InMemoryStore{
		rows:      make(map[id.OidcAuthorizationID]*models.OidcAuthorization),
		byCode:    make(map[id.CodeID]id.OidcAuthorizationID),
		byConsent: make(map[id.ConsentID]id.OidcAuthorizationID),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, a *models.OidcAuthorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[a.CodeID]; ok {
		return fmt.Errorf("code already linked: %w", sentinel.ErrConflict)
	}
	if _, ok := s.byConsent[a.ConsentID]; ok {
		return fmt.Errorf("consent already linked: %w", sentinel.ErrConflict)
	}
	stored := *a
	s.rows[a.ID] = &stored
	s.byCode[a.CodeID] = a.ID
	s.byConsent[a.ConsentID] = a.ID
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.rows, a.ID)
		delete(s.byCode, a.CodeID)
		delete(s.byConsent, a.ConsentID)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemoryStore) FindByCodeID(_ context.Context, codeID id.CodeID) (*models.OidcAuthorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rowID, ok := s.byCode[codeID]; ok {
		return copyRow(s.rows[rowID]), nil
	}
	return nil, fmt.Errorf("authorization not found: %w", sentinel.ErrNotFound)
}

// MarkReplayed records the first replay of the authorization's code. Later
// calls keep the original timestamp.
func (s *InMemoryStore) MarkReplayed(_ context.Context, authorizationID id.OidcAuthorizationID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[authorizationID]
	if !ok {
		return fmt.Errorf("authorization not found: %w", sentinel.ErrNotFound)
	}
	if row.ReplayedAt == nil {
		at := now
		row.ReplayedAt = &at
	}
	return nil
}

// ListByAuth returns every authorization event for authID, oldest first.
func (s *InMemoryStore) ListByAuth(_ context.Context, authID id.AuthID) ([]*models.OidcAuthorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.OidcAuthorization
	for _, row := range s.rows {
		if row.AuthID == authID {
			out = append(out, copyRow(row))
		}
	}
	slices.SortFunc(out, func(a, b *models.OidcAuthorization) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func copyRow(row *models.OidcAuthorization) *models.OidcAuthorization {
	found := *row
	if row.ReplayedAt != nil {
		at := *row.ReplayedAt
		found.ReplayedAt = &at
	}
	return &found
}
