package service

import (
	"context"

	"unique/internal/auth/models"
	"unique/internal/auth/pkce"
	"unique/internal/auth/redirect"
	"unique/internal/auth/scope"
	id "unique/pkg/domain"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/requestcontext"
)

// Authorize handles GET /auth. Errors returned directly occur before the
// redirect URI is trusted and must be rendered as JSON; every later failure
// comes back as an OutcomeError result aimed at the validated URI.
func (s *Service) Authorize(ctx context.Context, sessionID id.SessionID, req models.AuthorizationRequest) (result *models.AuthorizationResult, err error) {
	ctx, span := s.startSpan(ctx, "auth.Authorize")
	defer func() { endSpan(span, err) }()

	req.Normalize()

	session, user, err := s.ActiveUser(ctx, sessionID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeLoginRequired) {
			return &models.AuthorizationResult{Outcome: models.OutcomeLogin, State: req.State}, nil
		}
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

	base := models.AuthorizationResult{
		RedirectURI: redirectURI,
		State:       req.State,
		ClientID:    app.ClientID,
		Scope:       req.Scope,
	}
	fail := func(err error) (*models.AuthorizationResult, error) {
		r := base
		r.Outcome = models.OutcomeError
		r.Err = err
		return &r, nil
	}

	params, err := s.validateAuthorizationRequest(ctx, &req, app)
	if err != nil {
		return fail(err)
	}
	if req.Prompt == models.PromptLogin {
		return &models.AuthorizationResult{Outcome: models.OutcomeLogin, State: req.State}, nil
	}

	auth, err := s.GetOrCreateAuth(ctx, user.ID, app.ID)
	if err != nil {
		return fail(err)
	}
	granted, err := s.AuthorizedScopes(ctx, auth.ID)
	if err != nil {
		return fail(err)
	}

	if scope.IsAuthorized(req.Scope, granted) && req.Prompt != models.PromptConsent {
		issued, err := s.CreateAuthorization(ctx, auth, params)
		if err != nil {
			return fail(err)
		}
		s.logAudit(ctx, audit.EventAuthorizationGranted,
			"user_id", user.ID.String(),
			"client_id", app.ClientID,
			"decision", "existing_grant",
		)
		r := base
		r.Outcome = models.OutcomeCode
		r.Code = issued.Code.Token
		return &r, nil
	}

	if req.Prompt == models.PromptNone {
		return fail(dErrors.New(dErrors.CodeConsentRequired, "user has not granted the requested scope"))
	}

	pending := &models.PendingAuthorization{
		ClientID:            app.ClientID,
		RedirectURI:         redirectURI,
		Scope:               req.Scope,
		State:               req.State,
		Nonce:               req.Nonce,
		CodeChallenge:       params.CodeChallenge,
		CodeChallengeMethod: params.CodeChallengeMethod,
		CreatedAt:           requestcontext.Now(ctx),
	}
	if err := s.pending.Save(ctx, session.ID, pending); err != nil {
		return fail(dErrors.Wrap(err, dErrors.CodeInternal, "failed to save pending authorization"))
	}

	r := base
	r.Outcome = models.OutcomeConsent
	return &r, nil
}

// validateAuthorizationRequest applies the checks that run once the redirect
// URI is trusted. It fills in the display default.
func (s *Service) validateAuthorizationRequest(ctx context.Context, req *models.AuthorizationRequest, app *models.App) (models.AuthorizationParams, error) {
	if req.ResponseType != models.ResponseTypeCode {
		return models.AuthorizationParams{}, dErrors.New(dErrors.CodeUnsupportedResponseType, "response_type must be code")
	}
	if req.Scope == "" {
		return models.AuthorizationParams{}, dErrors.New(dErrors.CodeInvalidRequest, "scope is required")
	}
	if err := s.checkScope(ctx, req.Scope, app); err != nil {
		return models.AuthorizationParams{}, err
	}
	if !models.ValidPrompt(req.Prompt) {
		return models.AuthorizationParams{}, dErrors.New(dErrors.CodeInvalidRequest, "invalid prompt")
	}
	if req.Prompt == models.PromptNone && req.Display != "" {
		return models.AuthorizationParams{}, dErrors.New(dErrors.CodeInvalidRequest, "prompt=none and display cannot be used together")
	}
	if !models.ValidDisplay(req.Display) {
		return models.AuthorizationParams{}, dErrors.New(dErrors.CodeInvalidRequest, "invalid display")
	}
	if req.Display == "" {
		req.Display = models.DisplayPage
	}
	method, ok := pkce.ParseMethod(req.CodeChallenge, req.CodeChallengeMethod)
	if !ok {
		return models.AuthorizationParams{}, dErrors.New(dErrors.CodeInvalidRequest, "invalid code_challenge_method")
	}

	return models.AuthorizationParams{
		Scope:               req.Scope,
		Nonce:               req.Nonce,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: method,
	}, nil
}

// checkScope requires openid and rejects scopes the app may not request. The
// rejected tokens go to the log only; the error description stays fixed.
func (s *Service) checkScope(ctx context.Context, requested string, app *models.App) error {
	set := scope.Parse(requested)
	if !set.Has(scope.OpenID) {
		return dErrors.New(dErrors.CodeInvalidScope, "scope must include openid")
	}
	if offending := scope.Allowed(set, app.AllowedScopes); len(offending) > 0 {
		s.logger.InfoContext(ctx, "requested scope not allowed",
			"client_id", app.ClientID,
			"scopes", offending,
		)
		return dErrors.New(dErrors.CodeInvalidScope, "requested scope is not allowed for this client")
	}
	return nil
}
