package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"unique/internal/auth/models"
	"unique/internal/auth/scope"
	"unique/internal/auth/secrets"
	id "unique/pkg/domain"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/audit"
	"unique/pkg/platform/sentinel"
	"unique/pkg/requestcontext"
)

// ResolveApp maps client_id to an enabled App.
func (s *Service) ResolveApp(ctx context.Context, clientID string) (*models.App, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "client_id is required")
	}
	app, err := s.apps.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidClient, "unknown client")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve client")
	}
	if !app.IsEnable {
		return nil, dErrors.New(dErrors.CodeInvalidClient, "client is disabled")
	}
	return app, nil
}

// GetOrCreateAuth returns the (user, app) grant relationship, creating it on
// first use. Concurrent first calls converge on one row.
func (s *Service) GetOrCreateAuth(ctx context.Context, userID id.UserID, appID id.AppID) (*models.Auth, error) {
	auth, err := s.auths.GetOrCreate(ctx, userID, appID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization grant")
	}
	return auth, nil
}

// CreateAuthorization records one authorization event for auth: the consent,
// a fresh single-use code and the link between them. All three are written in
// one transaction.
func (s *Service) CreateAuthorization(ctx context.Context, auth *models.Auth, params models.AuthorizationParams) (result *models.IssuedAuthorization, err error) {
	ctx, span := s.startSpan(ctx, "auth.CreateAuthorization")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("auth.id", auth.ID.String()))

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveAuthorize(start)
		}
	}()

	if params.CodeChallengeMethod != "" && !params.CodeChallengeMethod.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "unsupported code_challenge_method")
	}

	token, err := secrets.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate authorization code")
	}

	now := requestcontext.Now(ctx)
	consent := &models.Consent{
		ID:        id.NewConsentID(),
		Scope:     scope.Parse(params.Scope).String(),
		IsEnable:  true,
		CreatedAt: now,
	}
	code := &models.Code{
		ID:                  id.NewCodeID(),
		Token:               token,
		ExpiresAt:           now.Add(models.CodeTTL),
		IsEnable:            true,
		Nonce:               params.Nonce,
		ACR:                 params.ACR,
		AMR:                 params.AMR,
		CodeChallenge:       params.CodeChallenge,
		CodeChallengeMethod: params.CodeChallengeMethod,
		CreatedAt:           now,
	}
	link := &models.OidcAuthorization{
		ID:        id.NewOidcAuthorizationID(),
		AuthID:    auth.ID,
		CodeID:    code.ID,
		ConsentID: consent.ID,
		CreatedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.consents.Create(ctx, consent); err != nil {
			return err
		}
		if err := s.codes.Create(ctx, code); err != nil {
			return err
		}
		return s.authorizations.Create(ctx, link)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create authorization")
	}

	if s.metrics != nil {
		s.metrics.IncrementCodesIssued()
	}
	s.logAudit(ctx, audit.EventCodeIssued,
		"user_id", auth.UserID.String(),
		"auth_id", auth.ID.String(),
		"code_prefix", codePrefix(code.Token),
		"scope", consent.Scope,
	)

	return &models.IssuedAuthorization{Authorization: link, Consent: consent, Code: code}, nil
}

// ListConsentsByAuth returns every consent recorded under auth, oldest first.
func (s *Service) ListConsentsByAuth(ctx context.Context, authID id.AuthID) ([]*models.Consent, error) {
	links, err := s.authorizations.ListByAuth(ctx, authID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list authorizations")
	}
	if len(links) == 0 {
		return nil, nil
	}
	ids := make([]id.ConsentID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ConsentID)
	}
	consents, err := s.consents.ListByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	return consents, nil
}

// AuthorizedScopes is the union of every enabled consent under auth.
func (s *Service) AuthorizedScopes(ctx context.Context, authID id.AuthID) (scope.Set, error) {
	consents, err := s.ListConsentsByAuth(ctx, authID)
	if err != nil {
		return nil, err
	}
	return scope.ExtractAuthorizedScopes(consents), nil
}

func (s *Service) FindAuthorizationByCode(ctx context.Context, codeID id.CodeID) (*models.OidcAuthorization, error) {
	link, err := s.authorizations.FindByCodeID(ctx, codeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "authorization not found for code")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization")
	}
	return link, nil
}

func (s *Service) FindConsent(ctx context.Context, consentID id.ConsentID) (*models.Consent, error) {
	consent, err := s.consents.FindByID(ctx, consentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "consent not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent")
	}
	return consent, nil
}
