package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/audit"
)

type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByCustomID(ctx context.Context, customID string) (*models.User, error)
}

type AppStore interface {
	FindByID(ctx context.Context, appID id.AppID) (*models.App, error)
	FindByClientID(ctx context.Context, clientID string) (*models.App, error)
}

type SessionStore interface {
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
}

type AuthStore interface {
	GetOrCreate(ctx context.Context, userID id.UserID, appID id.AppID, now time.Time) (*models.Auth, error)
	FindByID(ctx context.Context, authID id.AuthID) (*models.Auth, error)
}

type ConsentStore interface {
	Create(ctx context.Context, consent *models.Consent) error
	FindByID(ctx context.Context, consentID id.ConsentID) (*models.Consent, error)
	ListByIDs(ctx context.Context, ids []id.ConsentID) ([]*models.Consent, error)
}

type CodeStore interface {
	Create(ctx context.Context, code *models.Code) error
	Redeem(ctx context.Context, token string, now time.Time) (*models.Code, error)
}

type AuthorizationStore interface {
	Create(ctx context.Context, a *models.OidcAuthorization) error
	FindByCodeID(ctx context.Context, codeID id.CodeID) (*models.OidcAuthorization, error)
	ListByAuth(ctx context.Context, authID id.AuthID) ([]*models.OidcAuthorization, error)
	MarkReplayed(ctx context.Context, authorizationID id.OidcAuthorizationID, now time.Time) error
}

type TokenStore interface {
	Create(ctx context.Context, record *models.TokenRecord) error
	CreateSet(ctx context.Context, set *models.TokenSet) error
	FindByHash(ctx context.Context, hash string) (*models.TokenRecord, error)
	FindSetByAuthorization(ctx context.Context, authorizationID id.OidcAuthorizationID) (*models.TokenSet, error)
	Revoke(ctx context.Context, ids []id.TokenID) (int, error)
}

type PendingStore interface {
	Save(ctx context.Context, sessionID id.SessionID, p *models.PendingAuthorization) error
	Load(ctx context.Context, sessionID id.SessionID) (*models.PendingAuthorization, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// Transactor runs fn atomically. Stores called with the ctx passed to fn join
// the transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenSigner is the slice of the token hasher that issuance and the
// userinfo endpoint need.
type TokenSigner interface {
	Sign(claims map[string]any, header map[string]any) (string, error)
	Verify(tokenString string, audience string) (map[string]any, error)
	Algorithm() string
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
