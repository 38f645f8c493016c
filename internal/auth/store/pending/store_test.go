package pending

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
)

type store interface {
	Save(ctx context.Context, sessionID id.SessionID, p *models.PendingAuthorization) error
	Load(ctx context.Context, sessionID id.SessionID) (*models.PendingAuthorization, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// PendingStoreSuite runs the same contract against both backends.
type PendingStoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) (store, func(time.Duration))
}

func TestInMemoryPendingStore(t *testing.T) {
	suite.Run(t, &PendingStoreSuite{newStore: func(t *testing.T) (store, func(time.Duration)) {
		now := time.Now()
		s := New(WithClock(func() time.Time { return now }))
		return s, func(d time.Duration) { now = now.Add(d) }
	}})
}

func TestRedisPendingStore(t *testing.T) {
	suite.Run(t, &PendingStoreSuite{newStore: func(t *testing.T) (store, func(time.Duration)) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedis(client), mr.FastForward
	}})
}

func pendingFixture() *models.PendingAuthorization {
	return &models.PendingAuthorization{
		ClientID:            "client-1",
		RedirectURI:         "https://app.example.com/cb",
		Scope:               "openid email",
		State:               "xyz",
		Nonce:               "n-0S6_WzA2Mj",
		CodeChallenge:       "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		CodeChallengeMethod: models.CodeChallengeS256,
		CreatedAt:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *PendingStoreSuite) TestSaveLoadDelete() {
	st, _ := s.newStore(s.T())
	ctx := context.Background()
	sessionID := id.NewSessionID()

	s.Require().NoError(st.Save(ctx, sessionID, pendingFixture()))

	got, err := st.Load(ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(pendingFixture(), got)

	s.Require().NoError(st.Delete(ctx, sessionID))
	_, err = st.Load(ctx, sessionID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PendingStoreSuite) TestSaveReplaces() {
	st, _ := s.newStore(s.T())
	ctx := context.Background()
	sessionID := id.NewSessionID()

	s.Require().NoError(st.Save(ctx, sessionID, pendingFixture()))
	next := pendingFixture()
	next.Scope = "openid"
	s.Require().NoError(st.Save(ctx, sessionID, next))

	got, err := st.Load(ctx, sessionID)
	s.Require().NoError(err)
	s.Equal("openid", got.Scope)
}

func (s *PendingStoreSuite) TestExpiresAfterTTL() {
	st, advance := s.newStore(s.T())
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(st.Save(ctx, sessionID, pendingFixture()))

	advance(models.PendingAuthorizationTTL - time.Second)
	_, err := st.Load(ctx, sessionID)
	s.Require().NoError(err)

	advance(2 * time.Second)
	_, err = st.Load(ctx, sessionID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PendingStoreSuite) TestSessionsAreIsolated() {
	st, _ := s.newStore(s.T())
	ctx := context.Background()
	s.Require().NoError(st.Save(ctx, id.NewSessionID(), pendingFixture()))

	_, err := st.Load(ctx, id.NewSessionID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestSaveRejectsNil(t *testing.T) {
	err := New().Save(context.Background(), id.NewSessionID(), nil)
	require.ErrorIs(t, err, sentinel.ErrInvalidState)
}
