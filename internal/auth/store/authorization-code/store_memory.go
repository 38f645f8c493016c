package authorizationcode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

// Error Contract:
//   - ErrNotFound when no code has the token
//   - ErrAlreadyUsed when the code was redeemed before
//   - ErrExpired when now is past the code's exp

// InMemoryAuthorizationCodeStore indexes codes by token and by ID.
type InMemoryAuthorizationCodeStore struct {
	mu    sync.Mutex
	codes map[string]*models.Code
	byID  map[id.CodeID]string
}

func New() *InMemoryAuthorizationCodeStore {
	return &InMemoryAuthorizationCodeStore{
		codes: make(map[string]*models.Code),
		byID:  make(map[id.CodeID]string),
	}
}

func (s *InMemoryAuthorizationCodeStore) Create(ctx context.Context, code *models.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code.Token]; ok {
		return fmt.Errorf("authorization code token: %w", sentinel.ErrConflict)
	}
	stored := *code
	s.codes[code.Token] = &stored
	s.byID[code.ID] = code.Token
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.codes, code.Token)
		delete(s.byID, code.ID)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemoryAuthorizationCodeStore) FindByToken(_ context.Context, token string) (*models.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.codes[token]; ok {
		found := *c
		return &found, nil
	}
	return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryAuthorizationCodeStore) FindByID(_ context.Context, codeID id.CodeID) (*models.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.byID[codeID]; ok {
		found := *s.codes[token]
		return &found, nil
	}
	return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
}

// Redeem validates and flips the code under one lock, so exactly one caller
// wins a race for the same token. The returned code reflects its state before
// the call failed, which lets callers act on a replay.
func (s *InMemoryAuthorizationCodeStore) Redeem(_ context.Context, token string, now time.Time) (*models.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[token]
	if !ok {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	if err := c.ValidateForRedeem(now); err != nil {
		found := *c
		return &found, err
	}
	c.MarkUsed()
	redeemed := *c
	return &redeemed, nil
}
