package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"unique/internal/auth/models"
	"unique/internal/auth/pkce"
	"unique/internal/auth/redirect"
	"unique/internal/auth/secrets"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/sentinel"
	"unique/pkg/requestcontext"
)

// Exchange handles POST /token for the authorization_code grant. The code is
// consumed before the cross-checks run, so a failed exchange still burns it.
func (s *Service) Exchange(ctx context.Context, req models.TokenRequest) (tokens *models.IssuedTokens, err error) {
	ctx, span := s.startSpan(ctx, "auth.Exchange")
	defer func() { endSpan(span, err) }()

	req.Normalize()
	if req.GrantType != models.GrantAuthorizationCode {
		return nil, dErrors.New(dErrors.CodeUnsupportedGrantType, "only authorization_code is supported")
	}

	client, err := s.authenticateClient(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	if req.Code == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "code is required")
	}
	if req.RedirectURI == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "redirect_uri is required")
	}

	code, err := s.codes.Redeem(ctx, req.Code, requestcontext.Now(ctx))
	if err != nil {
		return nil, s.redeemFailure(ctx, code, err)
	}
	span.SetAttributes(attribute.String("code.id", code.ID.String()))

	link, err := s.FindAuthorizationByCode(ctx, code.ID)
	if err != nil {
		return nil, err
	}
	auth, err := s.auths.FindByID(ctx, link.AuthID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization grant")
	}

	app := client
	if app == nil {
		app, err = s.apps.FindByID(ctx, auth.AppID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
		}
	} else if app.ID != auth.AppID {
		s.countRedeemFailure("mismatch")
		return nil, dErrors.New(dErrors.CodeInvalidGrant, "authorization code was issued to another client")
	}

	if _, err := redirect.Validate(req.RedirectURI, app.RedirectURIs); err != nil {
		s.countRedeemFailure("mismatch")
		return nil, dErrors.New(dErrors.CodeInvalidGrant, "redirect_uri does not match")
	}

	if code.HasChallenge() {
		if req.CodeVerifier == "" {
			s.countRedeemFailure("pkce")
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "code_verifier is required")
		}
		if !pkce.Verify(req.CodeVerifier, code.CodeChallenge, code.CodeChallengeMethod) {
			s.countRedeemFailure("pkce")
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "code_verifier does not match")
		}
	}

	return s.Issue(ctx, link, code)
}

// authenticateClient verifies the client credentials. With client auth
// disabled an empty client_id is allowed and the caller falls back to the app
// bound to the code.
func (s *Service) authenticateClient(ctx context.Context, clientID, secret string) (*models.App, error) {
	if !s.cfg.RequireClientAuth {
		if clientID == "" {
			return nil, nil
		}
		app, err := s.ResolveApp(ctx, clientID)
		if err != nil {
			return nil, s.clientAuthFailure(ctx, clientID, err)
		}
		return app, nil
	}

	if clientID == "" || secret == "" {
		return nil, s.clientAuthFailure(ctx, clientID, dErrors.New(dErrors.CodeInvalidClient, "client authentication required"))
	}
	app, err := s.ResolveApp(ctx, clientID)
	if err != nil {
		return nil, s.clientAuthFailure(ctx, clientID, err)
	}
	if err := secrets.Verify(secret, app.ClientSecretHash); err != nil {
		return nil, s.clientAuthFailure(ctx, clientID, err)
	}
	return app, nil
}

// clientAuthFailure collapses every client authentication failure into one
// invalid_client error without saying which part was wrong.
func (s *Service) clientAuthFailure(ctx context.Context, clientID string, cause error) error {
	if dErrors.HasCode(cause, dErrors.CodeInternal) {
		return cause
	}
	if s.metrics != nil {
		s.metrics.IncrementClientAuthFailure()
	}
	s.logAudit(ctx, audit.EventAuthFailed,
		"client_id", clientID,
		"reason", "client authentication failed",
	)
	return dErrors.New(dErrors.CodeInvalidClient, "client authentication failed")
}

func (s *Service) redeemFailure(ctx context.Context, code *models.Code, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.countRedeemFailure("not_found")
		return dErrors.New(dErrors.CodeInvalidGrant, "authorization code not found")
	case errors.Is(err, sentinel.ErrExpired):
		s.countRedeemFailure("expired")
		return dErrors.New(dErrors.CodeInvalidGrant, "authorization code expired")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.countRedeemFailure("already_used")
		s.revokeReplayedCode(ctx, code)
		return dErrors.New(dErrors.CodeInvalidGrant, "authorization code already used")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to redeem authorization code")
	}
}

// revokeReplayedCode revokes every token minted from a code that is being
// presented a second time (RFC 6749 §4.1.2). The authorization is marked
// replayed first, so an exchange still minting for the same code revokes its
// own tokens once it persists them. Failures are logged, not returned: the
// caller already answers invalid_grant.
func (s *Service) revokeReplayedCode(ctx context.Context, code *models.Code) {
	if s.metrics != nil {
		s.metrics.IncrementCodeReplay()
	}
	if code == nil {
		return
	}

	attrs := []any{"code_prefix", codePrefix(code.Token), "reason", "authorization code replayed"}
	link, err := s.authorizations.FindByCodeID(ctx, code.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "replayed code has no authorization", "code_prefix", codePrefix(code.Token), "error", err)
		s.logAudit(ctx, audit.EventCodeReplayed, attrs...)
		return
	}
	if auth, err := s.auths.FindByID(ctx, link.AuthID); err == nil {
		attrs = append(attrs, "user_id", auth.UserID.String())
	}

	if err := s.authorizations.MarkReplayed(ctx, link.ID, requestcontext.Now(ctx)); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark authorization replayed", "error", err)
	}

	set, err := s.tokens.FindSetByAuthorization(ctx, link.ID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		// Still minting; Issue sees the mark and revokes.
		attrs = append(attrs, "revoked_tokens", 0)
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to load token set for replayed code", "error", err)
	default:
		revoked, err := s.tokens.Revoke(ctx, set.TokenIDs())
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke tokens for replayed code", "error", err)
		}
		attrs = append(attrs, "revoked_tokens", revoked)
	}
	s.logAudit(ctx, audit.EventCodeReplayed, attrs...)
}

func (s *Service) countRedeemFailure(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRedeemFailure(reason)
	}
}
