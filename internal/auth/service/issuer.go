package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"unique/internal/auth/models"
	"unique/internal/auth/scope"
	"unique/internal/auth/token"
	id "unique/pkg/domain"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/requestcontext"
)

const tokenTypeBearer = "Bearer"

// issuance is the resolved context every minted token draws from.
type issuance struct {
	now   time.Time
	user  *models.User
	app   *models.App
	scope string
	code  *models.Code
}

type minted struct {
	raw    string
	record *models.TokenRecord
}

// Issue mints the access, refresh and (for openid scopes) ID token for a
// redeemed code and persists their hashes as one token set. Any failure is a
// server_error and the code stays consumed. A code replayed while the set was
// being minted gets invalid_grant and the set is revoked.
func (s *Service) Issue(ctx context.Context, link *models.OidcAuthorization, code *models.Code) (tokens *models.IssuedTokens, err error) {
	ctx, span := s.startSpan(ctx, "auth.Issue")
	defer func() { endSpan(span, err) }()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveIssue(start)
		}
	}()

	in, err := s.resolveIssuance(ctx, link, code)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve authorization")
	}

	access, err := s.mint(models.TokenKindAccess, in, "")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	refresh, err := s.mint(models.TokenKindRefresh, in, "")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign refresh token")
	}
	var idToken *minted
	if scope.Parse(in.scope).Has(scope.OpenID) {
		idToken, err = s.mint(models.TokenKindID, in, access.raw)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign id token")
		}
	}

	set := &models.TokenSet{
		ID:                  id.NewTokenSetID(),
		OidcAuthorizationID: link.ID,
		AccessTokenID:       access.record.ID,
		RefreshTokenID:      refresh.record.ID,
		CreatedAt:           in.now,
	}
	records := []*models.TokenRecord{access.record, refresh.record}
	if idToken != nil {
		set.IDTokenID = &idToken.record.ID
		records = append(records, idToken.record)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, r := range records {
			if err := s.tokens.Create(ctx, r); err != nil {
				return err
			}
		}
		return s.tokens.CreateSet(ctx, set)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist tokens")
	}
	if err := s.revokeIfReplayed(ctx, link, set); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for _, r := range records {
			s.metrics.IncrementTokensIssued(r.Kind.String())
		}
	}
	s.logAudit(ctx, audit.EventTokenIssued,
		"user_id", in.user.ID.String(),
		"client_id", in.app.ClientID,
		"token_set_id", set.ID.String(),
		"scope", in.scope,
	)

	out := &models.IssuedTokens{
		AccessToken:  access.raw,
		RefreshToken: refresh.raw,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
		Scope:        in.scope,
		TokenSetID:   set.ID,
	}
	if idToken != nil {
		out.IDToken = idToken.raw
	}
	return out, nil
}

// revokeIfReplayed re-reads the authorization after the token set is stored.
// A replay that landed in between found no set to revoke, so it is done here.
func (s *Service) revokeIfReplayed(ctx context.Context, link *models.OidcAuthorization, set *models.TokenSet) error {
	current, err := s.authorizations.FindByCodeID(ctx, link.CodeID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload authorization")
	}
	if !current.IsReplayed() {
		return nil
	}
	revoked, err := s.tokens.Revoke(ctx, set.TokenIDs())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke tokens for replayed code")
	}
	s.logger.WarnContext(ctx, "authorization code replayed during issuance",
		"token_set_id", set.ID.String(),
		"revoked_tokens", revoked,
	)
	return dErrors.New(dErrors.CodeInvalidGrant, "authorization code already used")
}

func (s *Service) resolveIssuance(ctx context.Context, link *models.OidcAuthorization, code *models.Code) (*issuance, error) {
	auth, err := s.auths.FindByID(ctx, link.AuthID)
	if err != nil {
		return nil, fmt.Errorf("load auth: %w", err)
	}
	consent, err := s.consents.FindByID(ctx, link.ConsentID)
	if err != nil {
		return nil, fmt.Errorf("load consent: %w", err)
	}

	in := &issuance{now: requestcontext.Now(ctx), scope: consent.Scope, code: code}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := s.users.FindByID(gctx, auth.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		in.user = user
		return nil
	})
	g.Go(func() error {
		app, err := s.apps.FindByID(gctx, auth.AppID)
		if err != nil {
			return fmt.Errorf("load app: %w", err)
		}
		in.app = app
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// mint builds the claims for kind, signs them and returns the raw token with
// its persistable record. accessToken is only read for the ID token at_hash.
func (s *Service) mint(kind models.TokenKind, in *issuance, accessToken string) (*minted, error) {
	tokenID := id.NewTokenID()
	aud := in.app.Audience()

	claims := map[string]any{
		"iss": s.cfg.Issuer,
		"sub": in.user.ID.String(),
		"aud": aud,
		"iat": in.now.Unix(),
	}
	record := &models.TokenRecord{
		ID:       tokenID,
		Kind:     kind,
		Scope:    in.scope,
		IssuedAt: in.now,
		ClientID: in.app.ClientID,
		UserID:   in.user.ID,
	}

	switch kind {
	case models.TokenKindAccess, models.TokenKindRefresh:
		ttl := s.cfg.AccessTTL
		if kind == models.TokenKindRefresh {
			ttl = s.cfg.RefreshTTL
		}
		record.ExpireAt = in.now.Add(ttl)
		claims["jti"] = tokenID.String()
		claims["client_id"] = in.app.ClientID
		claims["scope"] = in.scope
	case models.TokenKindID:
		record.ExpireAt = in.now.Add(s.cfg.IDTokenTTL)
		authTime := in.code.CreatedAt
		record.AuthTime = &authTime
		record.Nonce = in.code.Nonce
		record.ACR = in.code.ACR
		record.AMR = in.code.AMR

		claims["auth_time"] = authTime.Unix()
		claims["at_hash"] = token.AtHash(accessToken, s.signer.Algorithm())
		if in.code.Nonce != "" {
			claims["nonce"] = in.code.Nonce
		}
		if in.code.ACR != "" {
			claims["acr"] = in.code.ACR
		}
		if amr := strings.Fields(in.code.AMR); len(amr) > 0 {
			claims["amr"] = amr
		}
		if len(aud) > 1 {
			claims["azp"] = in.app.ClientID
		}
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
	claims["exp"] = record.ExpireAt.Unix()

	raw, err := s.signer.Sign(claims, nil)
	if err != nil {
		return nil, err
	}
	record.Hash = token.HashToken(raw)
	return &minted{raw: raw, record: record}, nil
}
