package service

import (
	"context"
	"errors"

	"unique/internal/auth/models"
	"unique/internal/auth/scope"
	"unique/internal/auth/token"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/sentinel"
	"unique/pkg/requestcontext"
)

const (
	scopeEmail   = "email"
	scopeProfile = "profile"
)

// UserInfo serves the OIDC UserInfo endpoint for a bearer access token. The
// signature, the stored record and its revocation flag must all check out;
// every rejection is invalid_token. Claims beyond sub are released by scope.
func (s *Service) UserInfo(ctx context.Context, bearer string) (claims map[string]any, err error) {
	ctx, span := s.startSpan(ctx, "auth.UserInfo")
	defer func() { endSpan(span, err) }()

	if bearer == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "bearer token is required")
	}
	if _, err := s.signer.Verify(bearer, ""); err != nil {
		return nil, s.rejectToken(ctx, "", "invalid access token")
	}

	record, err := s.tokens.FindByHash(ctx, token.HashToken(bearer))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.rejectToken(ctx, "", "token revoked or not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load token")
	}
	if record.Kind != models.TokenKindAccess {
		return nil, s.rejectToken(ctx, record.ClientID, "not an access token")
	}
	if record.Revoked {
		return nil, s.rejectToken(ctx, record.ClientID, "token revoked or not found")
	}
	if requestcontext.Now(ctx).After(record.ExpireAt) {
		return nil, s.rejectToken(ctx, record.ClientID, "token expired")
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.rejectToken(ctx, record.ClientID, "associated user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsEnable {
		return nil, s.rejectToken(ctx, record.ClientID, "associated user is disabled")
	}

	return userClaims(user, scope.Parse(record.Scope)), nil
}

func userClaims(user *models.User, granted scope.Set) map[string]any {
	claims := map[string]any{"sub": user.ID.String()}
	if granted.Has(scopeEmail) {
		claims["email"] = user.Email
		claims["email_verified"] = user.Email != ""
	}
	if granted.Has(scopeProfile) {
		claims["name"] = user.DisplayName()
		claims["preferred_username"] = user.CustomID
	}
	return claims
}

func (s *Service) rejectToken(ctx context.Context, clientID, reason string) error {
	s.logAudit(ctx, audit.EventTokenRejected,
		"client_id", clientID,
		"reason", reason,
	)
	return dErrors.New(dErrors.CodeInvalidToken, reason)
}
