package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostGuardOpenAllowsEverything(t *testing.T) {
	guard, err := NewHostGuard(nil)
	require.NoError(t, err)
	assert.True(t, guard.Open())

	assert.NoError(t, guard.CheckURL("https://example.com/path"))
	assert.NoError(t, guard.CheckURL("http://anything.test"))
}

func TestHostGuardPatterns(t *testing.T) {
	guard, err := NewHostGuard([]string{"example.com", "*.example.org"})
	require.NoError(t, err)
	assert.False(t, guard.Open())

	tests := []struct {
		name    string
		url     string
		allowed bool
	}{
		{"exact host", "https://example.com/page", true},
		{"exact host with port", "https://example.com:8443/page", true},
		{"subdomain wildcard", "https://docs.example.org/guide", true},
		{"wildcard does not cross separator", "https://a.b.example.org", false},
		{"unlisted host", "https://evil.test", false},
		{"subdomain of exact host", "https://sub.example.com", false},
		{"case insensitive host", "https://EXAMPLE.COM", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.CheckURL(tt.url)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHostGuardRejectsBadURLs(t *testing.T) {
	guard, err := NewHostGuard(nil)
	require.NoError(t, err)

	assert.Error(t, guard.CheckURL("example.com"), "missing scheme")
	assert.Error(t, guard.CheckURL("ftp://example.com/file"), "non-http scheme")
	assert.Error(t, guard.CheckURL("file:///etc/passwd"), "file scheme")
	assert.Error(t, guard.CheckURL("https://"), "missing host")
}

func TestHostGuardSkipsBlankPatterns(t *testing.T) {
	guard, err := NewHostGuard([]string{" ", "", "example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, guard.Patterns())
}

func TestHostGuardInvalidPattern(t *testing.T) {
	_, err := NewHostGuard([]string{"[unclosed"})
	assert.Error(t, err)
}

func TestBlockRequest(t *testing.T) {
	guard, err := NewHostGuard([]string{"*.example.com", "example.com"})
	require.NoError(t, err)

	// Navigations to allowed hosts pass, all others are blocked. This
	// covers clicks and script redirects, not just the navigate tool.
	assert.False(t, blockRequest(guard, "https://docs.example.com/page", true))
	assert.False(t, blockRequest(guard, "https://example.com/", true))
	assert.True(t, blockRequest(guard, "https://evil.test/", true))
	assert.True(t, blockRequest(guard, "ftp://example.com/", true))

	// Subresource requests are never blocked.
	assert.False(t, blockRequest(guard, "https://cdn.other.net/app.js", false))
}
