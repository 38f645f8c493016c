package models

import (
	"fmt"
	"time"

	id "unique/pkg/domain"
)

// TokenKind distinguishes the three tokens minted per authorization.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
	TokenKindID      TokenKind = "id"
)

func (k TokenKind) IsValid() bool {
	switch k {
	case TokenKindAccess, TokenKindRefresh, TokenKindID:
		return true
	}
	return false
}

func ParseTokenKind(s string) (TokenKind, error) {
	k := TokenKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown token kind %q", s)
	}
	return k, nil
}

func (k TokenKind) String() string { return string(k) }

// TokenRecord is the persisted form of an issued token. Only the SHA-256 hash
// of the raw value is stored. Revoked only ever moves false -> true.
type TokenRecord struct {
	ID       id.TokenID `json:"id"`
	Kind     TokenKind  `json:"kind"`
	Hash     string     `json:"-"`
	Scope    string     `json:"scope"`
	IssuedAt time.Time  `json:"issued_at"`
	ExpireAt time.Time  `json:"exp"`
	ClientID string     `json:"client_id"`
	UserID   id.UserID  `json:"user_id"`
	Revoked  bool       `json:"revoked"`

	// ID token only.
	Nonce    string     `json:"nonce,omitempty"`
	AuthTime *time.Time `json:"auth_time,omitempty"`
	ACR      string     `json:"acr,omitempty"`
	AMR      string     `json:"amr,omitempty"`
}

// Revoke marks the record revoked. Calling it twice is a no-op.
func (t *TokenRecord) Revoke() {
	t.Revoked = true
}

// TokenSet groups the tokens minted for one OidcAuthorization. IDTokenID is
// nil when the scope did not include openid.
type TokenSet struct {
	ID                  id.TokenSetID          `json:"id"`
	OidcAuthorizationID id.OidcAuthorizationID `json:"oidc_authorization_id"`
	AccessTokenID       id.TokenID             `json:"access_token_id"`
	RefreshTokenID      id.TokenID             `json:"refresh_token_id"`
	IDTokenID           *id.TokenID            `json:"id_token_id,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
}

// TokenIDs lists every token in the set.
func (s *TokenSet) TokenIDs() []id.TokenID {
	ids := []id.TokenID{s.AccessTokenID, s.RefreshTokenID}
	if s.IDTokenID != nil {
		ids = append(ids, *s.IDTokenID)
	}
	return ids
}

// IssuedTokens is the raw material returned to the client exactly once.
type IssuedTokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	ExpiresIn    int64
	Scope        string
	TokenSetID   id.TokenSetID
}
