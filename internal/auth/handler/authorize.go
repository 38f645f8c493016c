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

// handleAuthorize serves GET /auth.
func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	req := models.AuthorizationRequest{
		ResponseType:        q.Get("response_type"),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		Nonce:               q.Get("nonce"),
		Prompt:              q.Get("prompt"),
		Display:             q.Get("display"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	}

	result, err := h.auth.Authorize(ctx, requestcontext.SessionID(ctx), req)
	if err != nil {
		h.writeAuthorizeError(w, r, err)
		return
	}
	if result.Outcome == models.OutcomeLogin {
		h.redirectToLogin(w, r)
		return
	}
	h.redirect(w, r, result)
}

// redirectToLogin hands the original request to the login page. prompt=login
// is dropped so the request the login page replays can complete.
func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("prompt") == models.PromptLogin {
		q.Del("prompt")
	}
	http.Redirect(w, r, h.frontendURL("/login")+"?"+q.Encode(), http.StatusFound)
}

// handleConsent serves POST /auth, the consent screen's decision.
func (h *Handler) handleConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "malformed form body"))
		return
	}
	req := models.ConsentRequest{
		ClientID:    r.PostForm.Get("client_id"),
		RedirectURI: r.PostForm.Get("redirect_uri"),
		Scope:       r.PostForm.Get("scope"),
		State:       r.PostForm.Get("state"),
		Action:      r.PostForm.Get("action"),
	}

	result, err := h.auth.Consent(ctx, requestcontext.SessionID(ctx), req)
	if err != nil {
		h.writeAuthorizeError(w, r, err)
		return
	}
	h.redirect(w, r, result)
}

// redirect sends the user agent wherever result points. Every outcome here
// targets a redirect URI the service has already validated.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, result *models.AuthorizationResult) {
	ctx := r.Context()
	switch result.Outcome {
	case models.OutcomeCode:
		params := url.Values{}
		params.Set("code", result.Code)
		if result.State != "" {
			params.Set("state", result.State)
		}
		http.Redirect(w, r, httputil.AppendQuery(result.RedirectURI, params), http.StatusFound)
	case models.OutcomeConsent:
		params := url.Values{}
		params.Set("client_id", result.ClientID)
		params.Set("scope", result.Scope)
		params.Set("redirect_uri", result.RedirectURI)
		if result.State != "" {
			params.Set("state", result.State)
		}
		http.Redirect(w, r, h.frontendURL("/consent")+"?"+params.Encode(), http.StatusFound)
	case models.OutcomeError:
		h.logger.InfoContext(ctx, "authorization request rejected",
			"client_id", result.ClientID,
			"error", string(dErrors.CodeOf(result.Err)),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.RedirectError(w, r, result.RedirectURI, result.State, result.Err)
	default:
		h.logger.ErrorContext(ctx, "unexpected authorization outcome",
			"outcome", string(result.Outcome),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "unexpected authorization outcome"))
	}
}

// writeAuthorizeError renders failures that happen before the redirect URI is
// trusted. They are never redirected.
func (h *Handler) writeAuthorizeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "authorization endpoint failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if code == dErrors.CodeInvalidClient {
		// An unknown client on the front channel is not an authentication failure.
		httputil.WriteErrorStatus(w, http.StatusNotFound, err)
		return
	}
	httputil.WriteError(w, err)
}

func (h *Handler) frontendURL(path string) string {
	return strings.TrimRight(h.cfg.FrontendURL, "/") + path
}
