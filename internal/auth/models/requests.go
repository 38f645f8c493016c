package models

import (
	"slices"
	"strings"
)

const (
	ResponseTypeCode       = "code"
	GrantAuthorizationCode = "authorization_code"

	ActionAllow = "allow"
	ActionDeny  = "deny"

	DisplayPage = "page"

	PromptNone          = "none"
	PromptLogin         = "login"
	PromptConsent       = "consent"
	PromptSelectAccount = "select_account"
)

var (
	validPrompts  = []string{PromptNone, PromptLogin, PromptConsent, PromptSelectAccount}
	validDisplays = []string{DisplayPage, "popup", "touch", "wap"}
)

// AuthorizationRequest is the query of GET /auth.
type AuthorizationRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	Nonce               string
	Prompt              string
	Display             string
	CodeChallenge       string
	CodeChallengeMethod string
}

// Normalize trims whitespace from every field.
func (r *AuthorizationRequest) Normalize() {
	r.ResponseType = strings.TrimSpace(r.ResponseType)
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
	r.Scope = strings.TrimSpace(r.Scope)
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.Display = strings.TrimSpace(r.Display)
	r.CodeChallenge = strings.TrimSpace(r.CodeChallenge)
	r.CodeChallengeMethod = strings.TrimSpace(r.CodeChallengeMethod)
}

// ValidPrompt reports whether p is empty or a prompt value OIDC defines.
func ValidPrompt(p string) bool {
	return p == "" || slices.Contains(validPrompts, p)
}

// ValidDisplay reports whether d is empty or a display value OIDC defines.
func ValidDisplay(d string) bool {
	return d == "" || slices.Contains(validDisplays, d)
}

// ConsentRequest is the form posted back from the consent screen.
type ConsentRequest struct {
	ClientID    string
	RedirectURI string
	Scope       string
	State       string
	Action      string
}

func (r *ConsentRequest) Normalize() {
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
	r.Scope = strings.TrimSpace(r.Scope)
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
}

// TokenRequest is the token endpoint form plus whichever client credentials
// the handler extracted (Basic header first, then form fields).
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	CodeVerifier string
	ClientID     string
	ClientSecret string
}

func (r *TokenRequest) Normalize() {
	r.GrantType = strings.TrimSpace(r.GrantType)
	r.Code = strings.TrimSpace(r.Code)
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
	r.CodeVerifier = strings.TrimSpace(r.CodeVerifier)
	r.ClientID = strings.TrimSpace(r.ClientID)
}

// LoginRequest is the form posted by the login page.
type LoginRequest struct {
	Username string
	Password string
}

// Normalize trims the login name. The password is compared as sent.
func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// AuthorizationOutcome tells the handler where to send the user agent.
type AuthorizationOutcome string

const (
	// OutcomeLogin: no usable session, or prompt=login; go to the login UI.
	OutcomeLogin AuthorizationOutcome = "login"
	// OutcomeConsent: the request is stashed; go to the consent UI.
	OutcomeConsent AuthorizationOutcome = "consent"
	// OutcomeCode: redirect to the client with a fresh code.
	OutcomeCode AuthorizationOutcome = "code"
	// OutcomeError: redirect to the client with Err in the query.
	OutcomeError AuthorizationOutcome = "error"
)

// AuthorizationResult is returned once the redirect URI has been validated,
// so every outcome except OutcomeLogin may safely target RedirectURI.
type AuthorizationResult struct {
	Outcome     AuthorizationOutcome
	RedirectURI string
	State       string
	ClientID    string
	Scope       string
	Code        string
	Err         error
}
