package issuedtoken

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

type IssuedTokenStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestIssuedTokenStoreSuite(t *testing.T) {
	suite.Run(t, new(IssuedTokenStoreSuite))
}

func (s *IssuedTokenStoreSuite) SetupTest() {
	s.store = New()
}

func record(kind models.TokenKind, hash string) *models.TokenRecord {
	now := time.Now()
	return &models.TokenRecord{
		ID:       id.NewTokenID(),
		Kind:     kind,
		Hash:     hash,
		Scope:    "openid",
		IssuedAt: now,
		ExpireAt: now.Add(time.Hour),
		ClientID: "client-1",
		UserID:   id.NewUserID(),
	}
}

func (s *IssuedTokenStoreSuite) seedSet(ctx context.Context) *models.TokenSet {
	access := record(models.TokenKindAccess, "h-access-"+id.NewTokenID().String())
	refresh := record(models.TokenKindRefresh, "h-refresh-"+id.NewTokenID().String())
	idTok := record(models.TokenKindID, "h-id-"+id.NewTokenID().String())
	for _, r := range []*models.TokenRecord{access, refresh, idTok} {
		s.Require().NoError(s.store.Create(ctx, r))
	}
	set := &models.TokenSet{
		ID:                  id.NewTokenSetID(),
		OidcAuthorizationID: id.NewOidcAuthorizationID(),
		AccessTokenID:       access.ID,
		RefreshTokenID:      refresh.ID,
		IDTokenID:           &idTok.ID,
		CreatedAt:           time.Now(),
	}
	s.Require().NoError(s.store.CreateSet(ctx, set))
	return set
}

func (s *IssuedTokenStoreSuite) TestLookup() {
	ctx := context.Background()
	r := record(models.TokenKindAccess, "hash-1")
	s.Require().NoError(s.store.Create(ctx, r))

	found, err := s.store.FindByHash(ctx, "hash-1")
	s.Require().NoError(err)
	s.Equal(r, found)

	_, err = s.store.FindByHash(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Create(ctx, record(models.TokenKindRefresh, "hash-1")), sentinel.ErrConflict)
}

func (s *IssuedTokenStoreSuite) TestTokenSet() {
	ctx := context.Background()
	set := s.seedSet(ctx)

	found, err := s.store.FindSetByAuthorization(ctx, set.OidcAuthorizationID)
	s.Require().NoError(err)
	s.Equal(set, found)

	s.Run("one set per authorization", func() {
		dup := *set
		dup.ID = id.NewTokenSetID()
		s.ErrorIs(s.store.CreateSet(ctx, &dup), sentinel.ErrConflict)
	})

	s.Run("set must reference stored tokens", func() {
		orphan := &models.TokenSet{
			ID:                  id.NewTokenSetID(),
			OidcAuthorizationID: id.NewOidcAuthorizationID(),
			AccessTokenID:       id.NewTokenID(),
			RefreshTokenID:      id.NewTokenID(),
		}
		s.ErrorIs(s.store.CreateSet(ctx, orphan), sentinel.ErrInvalidState)
	})
}

func (s *IssuedTokenStoreSuite) TestRevokeIsMonotonic() {
	ctx := context.Background()
	set := s.seedSet(ctx)

	n, err := s.store.Revoke(ctx, set.TokenIDs())
	s.Require().NoError(err)
	s.Equal(3, n)

	n, err = s.store.Revoke(ctx, set.TokenIDs())
	s.Require().NoError(err)
	s.Equal(0, n)

	for _, tokenID := range set.TokenIDs() {
		s.True(s.store.tokens[tokenID].Revoked)
	}
}

func (s *IssuedTokenStoreSuite) TestRollbackRemovesTokensAndSet() {
	var set *models.TokenSet
	err := tx.NewMemory().RunInTx(context.Background(), func(ctx context.Context) error {
		set = s.seedSet(ctx)
		return errors.New("abort")
	})
	s.Error(err)

	_, err = s.store.FindSetByAuthorization(context.Background(), set.OidcAuthorizationID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Empty(s.store.tokens)
}
