// Package domain holds the typed identifiers shared across the authorization server.
//
// Every persisted entity is keyed by a UUID, wrapped in its own named type so a
// CodeID can never be passed where a ConsentID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "unique/pkg/domain-errors"
)

type (
	UserID              uuid.UUID
	AppID               uuid.UUID
	SessionID           uuid.UUID
	AuthID              uuid.UUID
	ConsentID           uuid.UUID
	CodeID              uuid.UUID
	OidcAuthorizationID uuid.UUID
	TokenID             uuid.UUID
	TokenSetID          uuid.UUID
)

func (id UserID) String() string              { return uuid.UUID(id).String() }
func (id AppID) String() string               { return uuid.UUID(id).String() }
func (id SessionID) String() string           { return uuid.UUID(id).String() }
func (id AuthID) String() string              { return uuid.UUID(id).String() }
func (id ConsentID) String() string           { return uuid.UUID(id).String() }
func (id CodeID) String() string              { return uuid.UUID(id).String() }
func (id OidcAuthorizationID) String() string { return uuid.UUID(id).String() }
func (id TokenID) String() string             { return uuid.UUID(id).String() }
func (id TokenSetID) String() string          { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AppID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the single validation path for every ID type.
func parseUUID[T ~[16]byte](s, kind string) (T, error) {
	var zero T
	if s == "" {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return T(u), nil
}

func ParseUserID(s string) (UserID, error)       { return parseUUID[UserID](s, "user id") }
func ParseAppID(s string) (AppID, error)         { return parseUUID[AppID](s, "app id") }
func ParseSessionID(s string) (SessionID, error) { return parseUUID[SessionID](s, "session id") }
func ParseAuthID(s string) (AuthID, error)       { return parseUUID[AuthID](s, "auth id") }
func ParseConsentID(s string) (ConsentID, error) { return parseUUID[ConsentID](s, "consent id") }
func ParseCodeID(s string) (CodeID, error)       { return parseUUID[CodeID](s, "code id") }
func ParseTokenID(s string) (TokenID, error)     { return parseUUID[TokenID](s, "token id") }

func NewUserID() UserID                           { return UserID(uuid.New()) }
func NewAppID() AppID                             { return AppID(uuid.New()) }
func NewSessionID() SessionID                     { return SessionID(uuid.New()) }
func NewAuthID() AuthID                           { return AuthID(uuid.New()) }
func NewConsentID() ConsentID                     { return ConsentID(uuid.New()) }
func NewCodeID() CodeID                           { return CodeID(uuid.New()) }
func NewOidcAuthorizationID() OidcAuthorizationID { return OidcAuthorizationID(uuid.New()) }
func NewTokenID() TokenID                         { return TokenID(uuid.New()) }
func NewTokenSetID() TokenSetID                   { return TokenSetID(uuid.New()) }
