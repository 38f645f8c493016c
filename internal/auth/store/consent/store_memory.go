package consent

import (
	"context"
	"fmt"
	"sync"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

type InMemoryConsentStore struct {
	mu       sync.RWMutex
	consents map[id.ConsentID]*models.Consent
}

func New() *InMemoryConsentStore {
	return &InMemoryConsentStore{consents: make(map[id.ConsentID]*models.Consent)}
}

func (s *InMemoryConsentStore) Create(ctx context.Context, consent *models.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.consents[consent.ID]; ok {
		return fmt.Errorf("consent %s: %w", consent.ID, sentinel.ErrConflict)
	}
	stored := *consent
	s.consents[consent.ID] = &stored
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.consents, consent.ID)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemoryConsentStore) FindByID(_ context.Context, consentID id.ConsentID) (*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.consents[consentID]; ok {
		found := *c
		return &found, nil
	}
	return nil, fmt.Errorf("consent not found: %w", sentinel.ErrNotFound)
}

// ListByIDs returns the consents that exist among ids. Unknown ids are skipped.
func (s *InMemoryConsentStore) ListByIDs(_ context.Context, ids []id.ConsentID) ([]*models.Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Consent, 0, len(ids))
	for _, consentID := range ids {
		if c, ok := s.consents[consentID]; ok {
			found := *c
			out = append(out, &found)
		}
	}
	return out, nil
}
