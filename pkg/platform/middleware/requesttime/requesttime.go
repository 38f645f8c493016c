// Package requesttime pins a single "now" per HTTP request so every expiry
// check and timestamp written during the request agrees.
package requesttime

import (
	"net/http"
	"time"

	"unique/pkg/requestcontext"
)

// Middleware pins the wall clock in UTC.
var Middleware = WithClock(time.Now)

// WithClock pins clock() in UTC at the start of each request. Tests pass a
// controllable clock to step over expiry boundaries.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
