package handler

import (
	"net/http"
	"net/url"
	"strings"

	"unique/internal/auth/models"
	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/httputil"
	"unique/pkg/requestcontext"
)

// TokenResponse is the RFC 6749 §5.1 success body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// handleToken serves POST /token.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.NoStore(w)

	if h.cfg.RequireTLS && !isTLS(r) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "token endpoint requires TLS"))
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "malformed form body"))
		return
	}

	clientID, clientSecret, err := clientCredentials(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req := models.TokenRequest{
		GrantType:    r.PostForm.Get("grant_type"),
		Code:         r.PostForm.Get("code"),
		RedirectURI:  r.PostForm.Get("redirect_uri"),
		CodeVerifier: r.PostForm.Get("code_verifier"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}

	tokens, err := h.auth.Exchange(ctx, req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "token exchange failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  tokens.AccessToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		Scope:        tokens.Scope,
	})
}

// clientCredentials prefers HTTP Basic and falls back to the form body.
// Basic credentials are form-urlencoded per RFC 6749 §2.3.1.
func clientCredentials(r *http.Request) (string, string, error) {
	if r.Header.Get("Authorization") != "" {
		user, pass, ok := r.BasicAuth()
		if !ok {
			return "", "", dErrors.New(dErrors.CodeInvalidClient, "malformed Authorization header")
		}
		clientID, err := url.QueryUnescape(user)
		if err != nil {
			return "", "", dErrors.New(dErrors.CodeInvalidClient, "malformed client_id")
		}
		secret, err := url.QueryUnescape(pass)
		if err != nil {
			return "", "", dErrors.New(dErrors.CodeInvalidClient, "malformed client_secret")
		}
		return clientID, secret, nil
	}
	return r.PostForm.Get("client_id"), r.PostForm.Get("client_secret"), nil
}

func isTLS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
