package handler

import (
	"net/http"
	"strings"

	"unique/internal/auth/models"
	"unique/internal/auth/scope"
	"unique/pkg/platform/httputil"
)

// Discovery is the subset of OpenID Provider Metadata this server publishes.
type Discovery struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserinfoEndpoint                  string   `json:"userinfo_endpoint"`
	JWKSURI                           string   `json:"jwks_uri"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	ClaimsSupported                   []string `json:"claims_supported"`
}

const wellKnownCacheControl = "public, max-age=3600"

func (h *Handler) discovery() Discovery {
	issuer := strings.TrimRight(h.cfg.Issuer, "/")
	return Discovery{
		Issuer:                            issuer,
		AuthorizationEndpoint:             issuer + "/auth",
		TokenEndpoint:                     issuer + "/token",
		UserinfoEndpoint:                  issuer + "/userinfo",
		JWKSURI:                           issuer + "/.well-known/jwks.json",
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"authorization_code"},
		SubjectTypesSupported:             []string{"public"},
		IDTokenSigningAlgValuesSupported:  []string{h.keys.Algorithm()},
		ScopesSupported:                   []string{scope.OpenID, "profile", "email"},
		CodeChallengeMethodsSupported:     []string{string(models.CodeChallengeS256), string(models.CodeChallengePlain)},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_basic", "client_secret_post"},
		ClaimsSupported: []string{
			"iss", "sub", "aud", "exp", "iat", "auth_time",
			"nonce", "acr", "amr", "azp", "at_hash",
			"email", "email_verified", "name", "preferred_username",
		},
	}
}

func (h *Handler) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", wellKnownCacheControl)
	httputil.WriteJSON(w, http.StatusOK, h.discovery())
}

// handleJWKS publishes the verification keys. HMAC deployments serve an empty set.
func (h *Handler) handleJWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", wellKnownCacheControl)
	httputil.WriteJSON(w, http.StatusOK, h.keys.PublicJWKS())
}
