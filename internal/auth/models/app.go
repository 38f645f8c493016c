package models

import (
	"slices"
	"time"

	id "unique/pkg/domain"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/strings"
)

// App is a registered OAuth 2.0 / OIDC client.
//
// Invariants:
//   - ClientID is non-empty and unique across apps
//   - RedirectURIs is non-empty (authorization code flow needs a target)
//   - ClientSecretHash is a bcrypt hash, never the raw secret
type App struct {
	ID               id.AppID  `json:"id"`
	ClientID         string    `json:"client_id"`
	ClientSecretHash string    `json:"-"`
	Name             string    `json:"name"`
	RedirectURIs     []string  `json:"redirect_uris"`
	Aud              []string  `json:"aud"`
	AllowedScopes    []string  `json:"allowed_scopes"`
	IsEnable         bool      `json:"is_enable"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewApp(
	appID id.AppID,
	clientID string,
	clientSecretHash string,
	name string,
	redirectURIs []string,
	aud []string,
	allowedScopes []string,
	now time.Time,
) (*App, error) {
	if clientID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client_id cannot be empty")
	}
	if clientSecretHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client secret cannot be empty")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "app name cannot be empty")
	}
	redirectURIs = strings.CleanList(redirectURIs)
	if len(redirectURIs) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "redirect_uris cannot be empty")
	}
	return &App{
		ID:               appID,
		ClientID:         clientID,
		ClientSecretHash: clientSecretHash,
		Name:             name,
		RedirectURIs:     redirectURIs,
		Aud:              strings.CleanList(aud),
		AllowedScopes:    strings.CleanList(allowedScopes),
		IsEnable:         true,
		CreatedAt:        now,
	}, nil
}

// Audience is the aud claim for tokens issued to this app. It defaults to the
// client_id when no explicit audience is registered.
func (a *App) Audience() []string {
	if len(a.Aud) == 0 {
		return []string{a.ClientID}
	}
	return slices.Clone(a.Aud)
}
