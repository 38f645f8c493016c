package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
)

type AuthStoreSuite struct {
	suite.Suite
	store *InMemoryAuthStore
}

func TestAuthStoreSuite(t *testing.T) {
	suite.Run(t, new(AuthStoreSuite))
}

func (s *AuthStoreSuite) SetupTest() {
	s.store = New()
}

func (s *AuthStoreSuite) TestGetOrCreateIsIdempotent() {
	ctx := context.Background()
	userID, appID := id.NewUserID(), id.NewAppID()

	first, err := s.store.GetOrCreate(ctx, userID, appID, time.Now())
	s.Require().NoError(err)
	second, err := s.store.GetOrCreate(ctx, userID, appID, time.Now())
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	other, err := s.store.GetOrCreate(ctx, userID, id.NewAppID(), time.Now())
	s.Require().NoError(err)
	s.NotEqual(first.ID, other.ID)
}

func (s *AuthStoreSuite) TestConcurrentFirstCallsYieldOneAuth() {
	ctx := context.Background()
	userID, appID := id.NewUserID(), id.NewAppID()

	const goroutines = 50
	ids := make([]id.AuthID, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := s.store.GetOrCreate(ctx, userID, appID, time.Now())
			s.NoError(err)
			ids[i] = a.ID
		}(i)
	}
	wg.Wait()

	for _, got := range ids {
		s.Equal(ids[0], got)
	}
	s.Len(s.store.auths, 1)
}

func (s *AuthStoreSuite) TestFindByID() {
	ctx := context.Background()
	a, err := s.store.GetOrCreate(ctx, id.NewUserID(), id.NewAppID(), time.Now())
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(a, found)

	_, err = s.store.FindByID(ctx, id.NewAuthID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
