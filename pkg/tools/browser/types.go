package browser

import "unicode/utf8"

// effectiveTimeout resolves a per-call timeout against the manager default.
func effectiveTimeout(m *Manager, requested float64) float64 {
	if requested > 0 {
		return requested
	}
	return m.DefaultTimeoutMillis()
}

// validWaitUntil are the navigation completion states accepted by
// browser_navigate and browser_back.
var validWaitUntil = map[string]bool{
	"load":             true,
	"domcontentloaded": true,
	"networkidle":      true,
}

// validWaitStates are the element states accepted by browser_wait.
var validWaitStates = map[string]bool{
	"attached": true,
	"detached": true,
	"visible":  true,
	"hidden":   true,
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return trimToRuneBoundary(s, maxLen) + "..."
}

// trimToRuneBoundary cuts s to at most n bytes without splitting a
// multi-byte rune at the boundary.
func trimToRuneBoundary(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
