package testutil

import (
	"net/http"

	id "unique/pkg/domain"
)

// WithSessionCookie attaches the session cookie for tests that exercise the
// full middleware chain.
func WithSessionCookie(req *http.Request, sessionID id.SessionID) *http.Request {
	req.AddCookie(&http.Cookie{Name: "unique-sid", Value: sessionID.String()})
	return req
}
