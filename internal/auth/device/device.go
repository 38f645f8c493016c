// Package device derives human-readable labels and coarse fingerprints from
// User-Agent headers for audit trails and session drift detection.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints. A disabled service returns empty
// fingerprints and never reports drift.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent renders "Browser on OS", e.g. "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.Join(strings.Fields(browser+" on "+os), " ")
}

// ComputeFingerprint hashes browser family, browser major version, OS and
// platform. Patch releases keep the same fingerprint; major upgrades change it.
func (s *Service) ComputeFingerprint(userAgent string) string {
	if !s.enabled || userAgent == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	parts := []string{browser, major, ua.OS(), ua.Platform()}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether two fingerprints match and whether a
// mismatch should be treated as drift. Empty fingerprints never drift.
func (s *Service) CompareFingerprints(stored, current string) (matched bool, drift bool) {
	if stored == "" || current == "" {
		return true, false
	}
	if stored == current {
		return true, false
	}
	return false, true
}
