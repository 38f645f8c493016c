// Package session lifts the browser session cookie into request context.
//
// The middleware never rejects a request: an anonymous request simply carries no
// session, and the authorization flow decides whether to bounce it to login.
package session

import (
	"net/http"

	id "unique/pkg/domain"
	"unique/pkg/requestcontext"
)

// LegacyCookieName is still set by older login frontends.
const LegacyCookieName = "session_"

// DefaultCookieNames are checked in order.
var DefaultCookieNames = []string{"unique-sid", LegacyCookieName}

// CookieNames returns primary followed by the legacy fallback.
func CookieNames(primary string) []string {
	if primary == "" || primary == LegacyCookieName {
		return DefaultCookieNames
	}
	return []string{primary, LegacyCookieName}
}

// Extract stores the session ID named by the first present cookie in
// cookieNames. Malformed values are ignored.
func Extract(cookieNames []string) func(http.Handler) http.Handler {
	if len(cookieNames) == 0 {
		cookieNames = DefaultCookieNames
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := cookieValue(r, cookieNames)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			sessionID, err := id.ParseSessionID(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithSessionID(r.Context(), sessionID)))
		})
	}
}

func cookieValue(r *http.Request, names []string) string {
	for _, name := range names {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}
