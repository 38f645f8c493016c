// Package handler exposes the authorization server over HTTP: the /auth
// authorization and consent endpoints, the /authentication login endpoint,
// /token, /userinfo and the OIDC discovery documents.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-jose/go-jose/v4"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/middleware/session"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the authorization flow the endpoints delegate to.
type Service interface {
	Authorize(ctx context.Context, sessionID id.SessionID, req models.AuthorizationRequest) (*models.AuthorizationResult, error)
	Consent(ctx context.Context, sessionID id.SessionID, req models.ConsentRequest) (*models.AuthorizationResult, error)
	Exchange(ctx context.Context, req models.TokenRequest) (*models.IssuedTokens, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	UserInfo(ctx context.Context, bearer string) (map[string]any, error)
}

// KeySource publishes the signing algorithm and verification keys.
type KeySource interface {
	Algorithm() string
	PublicJWKS() jose.JSONWebKeySet
}

// Config carries the endpoint policy.
type Config struct {
	Issuer      string
	FrontendURL string
	RequireTLS  bool
	// CookieNames are checked in order for the browser session. Login sets
	// the first one.
	CookieNames []string
	// AuthorizeLimit wraps /auth and /authentication, TokenLimit wraps /token
	// and /userinfo. Either may be nil.
	AuthorizeLimit func(http.Handler) http.Handler
	TokenLimit     func(http.Handler) http.Handler
}

// Handler serves the OAuth 2.0 / OIDC endpoints.
type Handler struct {
	auth   Service
	keys   KeySource
	cfg    Config
	logger *slog.Logger
}

func New(auth Service, keys KeySource, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.CookieNames) == 0 {
		cfg.CookieNames = session.DefaultCookieNames
	}
	return &Handler{
		auth:   auth,
		keys:   keys,
		cfg:    cfg,
		logger: logger,
	}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.cfg.AuthorizeLimit != nil {
			r.Use(h.cfg.AuthorizeLimit)
		}
		r.Use(session.Extract(h.cfg.CookieNames))
		r.Get("/auth", h.handleAuthorize)
		r.Post("/auth", h.handleConsent)
		r.Post("/authentication", h.handleLogin)
	})
	r.Group(func(r chi.Router) {
		if h.cfg.TokenLimit != nil {
			r.Use(h.cfg.TokenLimit)
		}
		r.Post("/token", h.handleToken)
		r.Get("/userinfo", h.handleUserInfo)
		r.Post("/userinfo", h.handleUserInfo)
	})
	r.Get("/.well-known/openid-configuration", h.handleDiscovery)
	r.Get("/.well-known/jwks.json", h.handleJWKS)
}
