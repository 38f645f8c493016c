package models

import (
	"fmt"
	"time"

	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
)

// CodeTTL is how long an authorization code may wait for redemption.
const CodeTTL = 10 * time.Minute

// CodeChallengeMethod is a PKCE transformation (RFC 7636 §4.2).
type CodeChallengeMethod string

const (
	CodeChallengeS256  CodeChallengeMethod = "S256"
	CodeChallengePlain CodeChallengeMethod = "plain"
)

func (m CodeChallengeMethod) IsValid() bool {
	return m == CodeChallengeS256 || m == CodeChallengePlain
}

// Auth is the durable (user, app) grant relationship. There is at most one per
// pair; every authorization event for the pair hangs off it.
type Auth struct {
	ID        id.AuthID `json:"id"`
	UserID    id.UserID `json:"auth_user_id"`
	AppID     id.AppID  `json:"app_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Consent is the scope granted in one authorization event. IsEnable=false
// means the consent was revoked.
type Consent struct {
	ID        id.ConsentID `json:"id"`
	Scope     string       `json:"scope"`
	IsEnable  bool         `json:"is_enable"`
	CreatedAt time.Time    `json:"created_at"`
}

// Code is a single-use authorization code. IsEnable=false means it has been
// redeemed (or otherwise invalidated) and can never be redeemed again.
type Code struct {
	ID                  id.CodeID           `json:"id"`
	Token               string              `json:"-"`
	ExpiresAt           time.Time           `json:"exp"`
	IsEnable            bool                `json:"is_enable"`
	Nonce               string              `json:"nonce,omitempty"`
	ACR                 string              `json:"acr,omitempty"`
	AMR                 string              `json:"amr,omitempty"`
	CodeChallenge       string              `json:"code_challenge,omitempty"`
	CodeChallengeMethod CodeChallengeMethod `json:"code_challenge_method,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// ValidateForRedeem checks the code can be redeemed at now. The code is valid
// up to and including its expiry instant.
func (c *Code) ValidateForRedeem(now time.Time) error {
	if !c.IsEnable {
		return fmt.Errorf("authorization code already used: %w", sentinel.ErrAlreadyUsed)
	}
	if now.After(c.ExpiresAt) {
		return fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	return nil
}

// MarkUsed flips the code to its terminal state.
func (c *Code) MarkUsed() {
	c.IsEnable = false
}

// HasChallenge reports whether the code is PKCE-bound.
func (c *Code) HasChallenge() bool {
	return c.CodeChallenge != ""
}

// OidcAuthorization links one Auth to the Code and Consent of a single
// authorization event. CodeID and ConsentID are each unique across rows.
type OidcAuthorization struct {
	ID        id.OidcAuthorizationID `json:"id"`
	AuthID    id.AuthID              `json:"auth_id"`
	CodeID    id.CodeID              `json:"code_id"`
	ConsentID id.ConsentID           `json:"consent_id"`
	CreatedAt time.Time              `json:"created_at"`
	// ReplayedAt is set once the code is presented after it was consumed.
	ReplayedAt *time.Time `json:"replayed_at,omitempty"`
}

// IsReplayed reports whether the code behind a has been replayed. Tokens
// minted for a replayed authorization must not stay valid.
func (a *OidcAuthorization) IsReplayed() bool {
	return a.ReplayedAt != nil
}

// AuthorizationParams carries the per-event inputs to CreateAuthorization.
type AuthorizationParams struct {
	Scope               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod CodeChallengeMethod
	ACR                 string
	AMR                 string
}

// IssuedAuthorization is the result of creating an authorization: the link
// row plus the raw code token to hand to the client.
type IssuedAuthorization struct {
	Authorization *OidcAuthorization
	Consent       *Consent
	Code          *Code
}
