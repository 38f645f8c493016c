// Package models holds the rate limiting vocabulary shared by the limiter,
// its stores and the HTTP middleware.
package models

import (
	"strings"
	"time"
)

// EndpointClass groups endpoints that share one limit.
type EndpointClass string

const (
	// ClassAuthorize covers the browser-facing /auth endpoints.
	ClassAuthorize EndpointClass = "authorize"
	// ClassToken covers the back-channel /token endpoint.
	ClassToken EndpointClass = "token"
)

func (c EndpointClass) IsValid() bool {
	return c == ClassAuthorize || c == ClassToken
}

// Policy is a sliding-window limit: at most Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in whole seconds and only set when not allowed.
	RetryAfter int
}

// SanitizeKeySegment escapes the key delimiter so a caller-controlled value
// cannot address a neighbouring bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// BucketKey is the storage key for class and client IP.
func BucketKey(class EndpointClass, ip string) string {
	return "rl:" + string(class) + ":" + SanitizeKeySegment(ip)
}
