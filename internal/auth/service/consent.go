package service

import (
	"context"
	"errors"

	"unique/internal/auth/models"
	"unique/internal/auth/redirect"
	"unique/internal/auth/scope"
	id "unique/pkg/domain"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/sentinel"
)

// Consent handles POST /auth from the consent screen.
func (s *Service) Consent(ctx context.Context, sessionID id.SessionID, req models.ConsentRequest) (result *models.AuthorizationResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.Consent")
	defer func() { endSpan(span, err) }()

	req.Normalize()

	session, user, err := s.ActiveUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	app, err := s.ResolveApp(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	redirectURI, err := redirect.Validate(req.RedirectURI, app.RedirectURIs)
	if err != nil {
		return nil, err
	}

	pending, err := s.pending.Load(ctx, session.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidRequest, "no pending authorization request")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending authorization")
	}
	if !pending.Matches(app.ClientID, redirectURI) {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "pending authorization does not match request")
	}

	state := req.State
	if state == "" {
		state = pending.State
	}
	base := models.AuthorizationResult{
		RedirectURI: redirectURI,
		State:       state,
		ClientID:    app.ClientID,
	}
	fail := func(err error) (*models.AuthorizationResult, error) {
		r := base
		r.Outcome = models.OutcomeError
		r.Err = err
		return &r, nil
	}

	switch req.Action {
	case models.ActionDeny:
		s.discardPending(ctx, session.ID)
		s.logAudit(ctx, audit.EventConsentDenied,
			"user_id", user.ID.String(),
			"client_id", app.ClientID,
			"decision", "denied",
		)
		return fail(dErrors.New(dErrors.CodeAccessDenied, "user denied the request"))
	case models.ActionAllow:
	default:
		return fail(dErrors.New(dErrors.CodeInvalidRequest, "action must be allow or deny"))
	}

	granted := pending.Scope
	if req.Scope != "" {
		if !scope.Parse(pending.Scope).Contains(scope.Parse(req.Scope)) {
			return fail(dErrors.New(dErrors.CodeInvalidScope, "scope exceeds the original request"))
		}
		granted = req.Scope
	}
	if err := s.checkScope(ctx, granted, app); err != nil {
		return fail(err)
	}

	auth, err := s.GetOrCreateAuth(ctx, user.ID, app.ID)
	if err != nil {
		return fail(err)
	}
	issued, err := s.CreateAuthorization(ctx, auth, models.AuthorizationParams{
		Scope:               granted,
		Nonce:               pending.Nonce,
		CodeChallenge:       pending.CodeChallenge,
		CodeChallengeMethod: pending.CodeChallengeMethod,
	})
	if err != nil {
		return fail(err)
	}
	s.discardPending(ctx, session.ID)

	s.logAudit(ctx, audit.EventAuthorizationGranted,
		"user_id", user.ID.String(),
		"client_id", app.ClientID,
		"decision", "granted",
	)

	r := base
	r.Outcome = models.OutcomeCode
	r.Scope = issued.Consent.Scope
	r.Code = issued.Code.Token
	return &r, nil
}

func (s *Service) discardPending(ctx context.Context, sessionID id.SessionID) {
	if err := s.pending.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete pending authorization", "error", err)
	}
}
