package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func newUser(email string) *models.User {
	return &models.User{
		ID:        id.NewUserID(),
		CustomID:  email,
		Email:     email,
		IsEnable:  true,
		CreatedAt: time.Now(),
	}
}

func (s *InMemoryUserStoreSuite) TestLookup() {
	ctx := context.Background()

	s.Run("returns stored user", func() {
		u := newUser("alice@example.com")
		s.Require().NoError(s.store.Create(ctx, u))

		found, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u, found)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("finds by login name", func() {
		u := newUser("dave@example.com")
		u.CustomID = "dave"
		s.Require().NoError(s.store.Create(ctx, u))

		found, err := s.store.FindByCustomID(ctx, "dave")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)

		_, err = s.store.FindByCustomID(ctx, "Dave")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryUserStoreSuite) TestUniqueness() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newUser("bob@example.com")))

	err := s.store.Create(ctx, newUser("bob@example.com"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryUserStoreSuite) TestCreateRolledBackWithTransaction() {
	u := newUser("carol@example.com")
	boom := errors.New("boom")

	err := tx.NewMemory().RunInTx(context.Background(), func(ctx context.Context) error {
		s.Require().NoError(s.store.Create(ctx, u))
		return boom
	})

	s.ErrorIs(err, boom)
	_, err = s.store.FindByID(context.Background(), u.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
