// Package httputil renders domain errors and JSON bodies in the OAuth 2.0 wire
// shape shared by every endpoint.
package httputil

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	dErrors "unique/pkg/domain-errors"
)

// ErrorResponse is the RFC 6749 §5.2 error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	State            string `json:"state,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err with the status its code maps to.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorStatus(w, dErrors.HTTPStatus(dErrors.CodeOf(err)), err)
}

// WriteErrorStatus writes err with an explicit status. server_error never
// carries a description; anything outside the taxonomy renders as server_error.
func WriteErrorStatus(w http.ResponseWriter, status int, err error) {
	body := ErrorResponse{Error: string(dErrors.CodeInternal)}
	if de, ok := dErrors.From(err); ok {
		body.Error = string(de.Code)
		if de.Code != dErrors.CodeInternal {
			body.ErrorDescription = de.Message
		}
	}
	if status == http.StatusUnauthorized {
		switch body.Error {
		case string(dErrors.CodeInvalidClient):
			w.Header().Set("WWW-Authenticate", `Basic realm="unique"`)
		case string(dErrors.CodeInvalidToken):
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		}
	}
	WriteJSON(w, status, body)
}

// NoStore marks a response as uncacheable (RFC 6749 §5.1).
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// RedirectError sends the user agent back to a validated redirect URI with the
// error in the query (RFC 6749 §4.1.2.1). Callers must only pass URIs that have
// already been matched against the client's registration.
func RedirectError(w http.ResponseWriter, r *http.Request, redirectURI, state string, err error) {
	params := url.Values{}
	params.Set("error", string(dErrors.CodeOf(err)))
	if de, ok := dErrors.From(err); ok && de.Code != dErrors.CodeInternal {
		params.Set("error_description", de.Message)
	}
	if state != "" {
		params.Set("state", state)
	}
	http.Redirect(w, r, AppendQuery(redirectURI, params), http.StatusFound)
}

// AppendQuery adds params to raw, keeping any query it already has.
func AppendQuery(raw string, params url.Values) string {
	if len(params) == 0 {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + params.Encode()
}
