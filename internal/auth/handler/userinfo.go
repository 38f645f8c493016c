package handler

import (
	"net/http"
	"strings"

	dErrors "unique/pkg/domain-errors"
	"unique/pkg/platform/httputil"
	"unique/pkg/requestcontext"
)

// handleUserInfo serves GET and POST /userinfo (OIDC Core §5.3) for a bearer
// access token sent in the Authorization header.
func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.NoStore(w)

	if h.cfg.RequireTLS && !isTLS(r) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "userinfo endpoint requires TLS"))
		return
	}
	bearer, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="unique"`)
		httputil.WriteErrorStatus(w, http.StatusUnauthorized,
			dErrors.New(dErrors.CodeInvalidRequest, "missing Authorization Bearer token"))
		return
	}

	claims, err := h.auth.UserInfo(ctx, bearer)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "userinfo lookup failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claims)
}

// bearerToken reads "Authorization: Bearer <token>". The scheme is
// case-insensitive (RFC 6750 §2.1).
func bearerToken(r *http.Request) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", false
	}
	return tok, true
}
