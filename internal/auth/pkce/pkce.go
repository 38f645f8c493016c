// Package pkce verifies Proof Key for Code Exchange parameters (RFC 7636).
package pkce

import (
	"crypto/subtle"
	"regexp"

	"golang.org/x/oauth2"

	"unique/internal/auth/models"
)

// verifierPattern is the unreserved-character set and length from RFC 7636 §4.1.
var verifierPattern = regexp.MustCompile(`^[A-Za-z0-9\-._~]{43,128}$`)

// ParseMethod resolves the challenge method sent with /auth. An empty method
// defaults to plain when a challenge is present.
func ParseMethod(challenge, method string) (models.CodeChallengeMethod, bool) {
	if challenge == "" {
		return "", method == ""
	}
	if method == "" {
		return models.CodeChallengePlain, true
	}
	m := models.CodeChallengeMethod(method)
	return m, m.IsValid()
}

// Verify checks verifier against the challenge stored on the code.
func Verify(verifier, challenge string, method models.CodeChallengeMethod) bool {
	if verifier == "" || challenge == "" || !verifierPattern.MatchString(verifier) {
		return false
	}
	var computed string
	switch method {
	case models.CodeChallengeS256:
		computed = oauth2.S256ChallengeFromVerifier(verifier)
	case models.CodeChallengePlain, "":
		computed = verifier
	default:
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
