package issuedtoken

import (
	"context"
	"fmt"
	"sync"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

// InMemoryStore keeps token records (hashes only) and the sets grouping them.
type InMemoryStore struct {
	mu     sync.RWMutex
	tokens map[id.TokenID]*models.TokenRecord
	byHash map[string]id.TokenID
	sets   map[id.OidcAuthorizationID]*models.TokenSet
}

func New() *InMemoryStore {
	return &InMemoryStore{
		tokens: make(map[id.TokenID]*models.TokenRecord),
		byHash: make(map[string]id.TokenID),
		sets:   make(map[id.OidcAuthorizationID]*models.TokenSet),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, record *models.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byHash[record.Hash]; ok {
		return fmt.Errorf("token hash: %w", sentinel.ErrConflict)
	}
	stored := *record
	s.tokens[record.ID] = &stored
	s.byHash[record.Hash] = record.ID
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.tokens, record.ID)
		delete(s.byHash, record.Hash)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemoryStore) CreateSet(ctx context.Context, set *models.TokenSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[set.OidcAuthorizationID]; ok {
		return fmt.Errorf("token set for authorization: %w", sentinel.ErrConflict)
	}
	for _, tokenID := range set.TokenIDs() {
		if _, ok := s.tokens[tokenID]; !ok {
			return fmt.Errorf("token set references unknown token %s: %w", tokenID, sentinel.ErrInvalidState)
		}
	}
	stored := *set
	s.sets[set.OidcAuthorizationID] = &stored
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.sets, set.OidcAuthorizationID)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemoryStore) FindByHash(_ context.Context, hash string) (*models.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tokenID, ok := s.byHash[hash]; ok {
		found := *s.tokens[tokenID]
		return &found, nil
	}
	return nil, fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindSetByAuthorization(_ context.Context, authorizationID id.OidcAuthorizationID) (*models.TokenSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if set, ok := s.sets[authorizationID]; ok {
		found := *set
		return &found, nil
	}
	return nil, fmt.Errorf("token set not found: %w", sentinel.ErrNotFound)
}

// Revoke marks the given tokens revoked and reports how many changed state.
// Already revoked or unknown tokens are skipped.
func (s *InMemoryStore) Revoke(_ context.Context, ids []id.TokenID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, tokenID := range ids {
		if t, ok := s.tokens[tokenID]; ok && !t.Revoked {
			t.Revoke()
			n++
		}
	}
	return n, nil
}
