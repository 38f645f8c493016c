package models

import (
	"time"
)

// PendingAuthorizationTTL bounds how long a user may sit on the consent screen.
const PendingAuthorizationTTL = 10 * time.Minute

// PendingAuthorization is the validated /auth request parked while the user
// is on the consent screen. It is keyed by browser session.
type PendingAuthorization struct {
	ClientID            string              `json:"client_id"`
	RedirectURI         string              `json:"redirect_uri"`
	Scope               string              `json:"scope"`
	State               string              `json:"state,omitempty"`
	Nonce               string              `json:"nonce,omitempty"`
	CodeChallenge       string              `json:"code_challenge,omitempty"`
	CodeChallengeMethod CodeChallengeMethod `json:"code_challenge_method,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// Matches reports whether the pending request belongs to this client and
// redirect target.
func (p *PendingAuthorization) Matches(clientID, redirectURI string) bool {
	return p.ClientID == clientID && p.RedirectURI == redirectURI
}
