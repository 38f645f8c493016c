package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chromeMac120      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	chromeMac120Patch = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.71 Safari/537.36"
	chromeMac121      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	firefoxLinux      = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	safariIPhone      = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		contains []string
	}{
		{"chrome on mac", chromeMac120, []string{"Chrome on", "Mac OS X"}},
		{"firefox on linux", firefoxLinux, []string{"Firefox on", "Linux"}},
		{"safari on iphone", safariIPhone, []string{"Safari on", "iPhone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := ParseUserAgent(tt.ua)
			for _, want := range tt.contains {
				assert.Contains(t, label, want)
			}
			assert.NotContains(t, label, "  ")
		})
	}

	t.Run("blank header", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", ParseUserAgent("   "))
	})
}

func TestComputeFingerprint(t *testing.T) {
	svc := NewService(true)

	base := svc.ComputeFingerprint(chromeMac120)
	require.Len(t, base, 64)

	assert.Equal(t, base, svc.ComputeFingerprint(chromeMac120Patch), "patch release keeps the fingerprint")
	assert.NotEqual(t, base, svc.ComputeFingerprint(chromeMac121), "major upgrade changes it")
	assert.NotEqual(t, base, svc.ComputeFingerprint(firefoxLinux))
	assert.Empty(t, svc.ComputeFingerprint(""))

	assert.Empty(t, NewService(false).ComputeFingerprint(chromeMac120))
}

func TestCompareFingerprints(t *testing.T) {
	svc := NewService(true)
	a := svc.ComputeFingerprint(chromeMac120)
	b := svc.ComputeFingerprint(firefoxLinux)

	tests := []struct {
		name            string
		stored, current string
		matched, drift  bool
	}{
		{"same device", a, a, true, false},
		{"different device", a, b, false, true},
		{"nothing stored", "", b, true, false},
		{"no current header", a, "", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, drift := svc.CompareFingerprints(tt.stored, tt.current)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.drift, drift)
		})
	}
}
