package pending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
)

// Clock returns the current time.
type Clock func() time.Time

type entry struct {
	pending   models.PendingAuthorization
	expiresAt time.Time
}

// InMemoryStore parks pending authorizations per browser session. Entries
// older than the TTL are treated as absent and dropped lazily.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[id.SessionID]entry
	ttl     time.Duration
	clock   Clock
}

type Option func(*InMemoryStore)

func WithClock(clock Clock) Option {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *InMemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func New(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[id.SessionID]entry),
		ttl:     models.PendingAuthorizationTTL,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save replaces any request already parked for the session.
func (s *InMemoryStore) Save(_ context.Context, sessionID id.SessionID, p *models.PendingAuthorization) error {
	if p == nil {
		return fmt.Errorf("pending authorization is required: %w", sentinel.ErrInvalidState)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = entry{pending: *p, expiresAt: s.clock().Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, sessionID id.SessionID) (*models.PendingAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return nil, fmt.Errorf("pending authorization not found: %w", sentinel.ErrNotFound)
	}
	if !s.clock().Before(e.expiresAt) {
		delete(s.entries, sessionID)
		return nil, fmt.Errorf("pending authorization not found: %w", sentinel.ErrNotFound)
	}
	p := e.pending
	return &p, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
