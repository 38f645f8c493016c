// Package scope parses OAuth scope strings and decides whether a request is
// covered by what the user has already consented to.
package scope

import (
	"slices"
	"strings"

	"unique/internal/auth/models"
)

// OpenID is the scope that turns an OAuth request into an OIDC one.
const OpenID = "openid"

// Set is an unordered collection of scope tokens.
type Set map[string]struct{}

// Parse splits a space-delimited scope string. Runs of whitespace and empty
// tokens are ignored.
func Parse(scope string) Set {
	fields := strings.Fields(scope)
	set := make(Set, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func (s Set) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// Contains reports whether every scope in other is in s.
func (s Set) Contains(other Set) bool {
	for k := range other {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Slice returns the scopes sorted alphabetically.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// String is the canonical space-joined form, sorted alphabetically.
func (s Set) String() string {
	return strings.Join(s.Slice(), " ")
}

func Merge(a, b Set) Set {
	out := make(Set, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// IsAuthorized reports whether requested is a subset of granted. An empty
// request is trivially authorized.
func IsAuthorized(requested string, granted Set) bool {
	return granted.Contains(Parse(requested))
}

// ExtractAuthorizedScopes is the union of the scopes of every enabled consent.
func ExtractAuthorizedScopes(consents []*models.Consent) Set {
	out := Set{}
	for _, c := range consents {
		if c == nil || !c.IsEnable {
			continue
		}
		for k := range Parse(c.Scope) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Allowed returns the requested scopes that are not in allowed, sorted. An
// empty allowed list places no restriction.
func Allowed(requested Set, allowed []string) []string {
	if len(allowed) == 0 {
		return nil
	}
	permitted := Parse(strings.Join(allowed, " "))
	var denied []string
	for _, k := range requested.Slice() {
		if !permitted.Has(k) {
			denied = append(denied, k)
		}
	}
	return denied
}
