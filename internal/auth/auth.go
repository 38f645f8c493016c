// Package auth assembles the authorization server: persistence backends, the
// flow service and its HTTP handler.
package auth

import (
	"database/sql"
	"log/slog"

	"unique/internal/auth/handler"
	"unique/internal/auth/service"
	"unique/internal/auth/store"
	appstore "unique/internal/auth/store/app"
	authstore "unique/internal/auth/store/auth"
	codestore "unique/internal/auth/store/authorization-code"
	consentstore "unique/internal/auth/store/consent"
	tokenstore "unique/internal/auth/store/issued-token"
	oidcstore "unique/internal/auth/store/oidc-authorization"
	pendingstore "unique/internal/auth/store/pending"
	sessionstore "unique/internal/auth/store/session"
	userstore "unique/internal/auth/store/user"
	"unique/pkg/platform/tx"
)

// Service runs the authorization code flow.
type Service = service.Service

// Handler wires HTTP endpoints to the service.
type Handler = handler.Handler

// Backend is one persistence mode: the flow's stores, the transactor that
// spans them, and the write paths used by seeding and tests.
type Backend struct {
	Stores   service.Stores
	Tx       service.Transactor
	Users    store.UserCreator
	Apps     store.AppCreator
	Sessions store.SessionCreator
}

// NewMemoryBackend keeps everything in process. A nil pending store selects
// the in-memory stash.
func NewMemoryBackend(pending service.PendingStore) *Backend {
	if pending == nil {
		pending = pendingstore.New()
	}
	users := userstore.New()
	apps := appstore.New()
	sessions := sessionstore.New()
	return &Backend{
		Stores: service.Stores{
			Users:          users,
			Apps:           apps,
			Sessions:       sessions,
			Auths:          authstore.New(),
			Consents:       consentstore.New(),
			Codes:          codestore.New(),
			Authorizations: oidcstore.New(),
			Tokens:         tokenstore.New(),
			Pending:        pending,
		},
		Tx:       tx.NewMemory(),
		Users:    users,
		Apps:     apps,
		Sessions: sessions,
	}
}

// NewPostgresBackend persists to db. The pending stash is short-lived and
// lives in Redis or memory; a nil store selects memory.
func NewPostgresBackend(db *sql.DB, pending service.PendingStore) *Backend {
	if pending == nil {
		pending = pendingstore.New()
	}
	users := userstore.NewPostgres(db)
	apps := appstore.NewPostgres(db)
	sessions := sessionstore.NewPostgres(db)
	return &Backend{
		Stores: service.Stores{
			Users:          users,
			Apps:           apps,
			Sessions:       sessions,
			Auths:          authstore.NewPostgres(db),
			Consents:       consentstore.NewPostgres(db),
			Codes:          codestore.NewPostgres(db),
			Authorizations: oidcstore.NewPostgres(db),
			Tokens:         tokenstore.NewPostgres(db),
			Pending:        pending,
		},
		Tx:       tx.NewPostgres(db),
		Users:    users,
		Apps:     apps,
		Sessions: sessions,
	}
}

// NewService constructs the flow service over backend.
func NewService(backend *Backend, signer service.TokenSigner, cfg service.Config, opts ...service.Option) (*Service, error) {
	return service.New(backend.Stores, backend.Tx, signer, cfg, opts...)
}

// NewHandler constructs the HTTP handler for the OAuth and discovery routes.
func NewHandler(s *Service, keys handler.KeySource, cfg handler.Config, logger *slog.Logger) *Handler {
	return handler.New(s, keys, cfg, logger)
}
