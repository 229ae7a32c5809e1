package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// HostGuard restricts navigation to an allowed set of host patterns.
// An empty pattern list allows every host.
type HostGuard struct {
	patterns []string
	globs    []glob.Glob
}

// NewHostGuard compiles the given host glob patterns. Patterns match the
// hostname only, e.g. "*.example.com" or "docs.example.com".
func NewHostGuard(patterns []string) (*HostGuard, error) {
	g := &HostGuard{}
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		compiled, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid host pattern %q: %w", pattern, err)
		}
		g.patterns = append(g.patterns, pattern)
		g.globs = append(g.globs, compiled)
	}
	return g, nil
}

// Open reports whether the guard allows every host.
func (g *HostGuard) Open() bool {
	return len(g.globs) == 0
}

// Patterns returns the configured patterns.
func (g *HostGuard) Patterns() []string {
	out := make([]string, len(g.patterns))
	copy(out, g.patterns)
	return out
}

// CheckURL validates a full URL against the guard. It rejects non-HTTP
// schemes and hosts outside the allowed set.
func (g *HostGuard) CheckURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	switch parsed.Scheme {
	case "http", "https":
	case "":
		return fmt.Errorf("URL %q has no scheme, use http:// or https://", rawURL)
	default:
		return fmt.Errorf("scheme %q is not allowed, use http or https", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}

	if g.Open() {
		return nil
	}
	for _, compiled := range g.globs {
		if compiled.Match(host) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not in the allowed list (%s)", host, strings.Join(g.patterns, ", "))
}
