package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

const (
	defaultSearchResults = 10
	searchContextRadius  = 60
)

// SearchTool finds occurrences of a text pattern in the current page.
type SearchTool struct {
	manager *Manager
}

// NewSearchTool creates a new search tool.
func NewSearchTool(manager *Manager) *SearchTool {
	return &SearchTool{manager: manager}
}

// Name returns the tool name.
func (t *SearchTool) Name() string {
	return "browser_search"
}

// Description returns the tool description.
func (t *SearchTool) Description() string {
	return "Search the visible text of the current page for a string and return each match with surrounding context."
}

// Schema returns the tool's JSON schema.
func (t *SearchTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Text to search for",
			},
			"case_sensitive": map[string]interface{}{
				"type":        "boolean",
				"description": "Match case exactly (default false)",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of matches to return (default 10)",
			},
		},
		[]string{"query"},
	)
}

type searchInput struct {
	Query         string `json:"query"`
	CaseSensitive bool   `json:"case_sensitive"`
	MaxResults    int    `json:"max_results"`
}

// Execute searches the page text.
func (t *SearchTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input searchInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}

	if input.Query == "" {
		return "", fmt.Errorf("query is required")
	}
	if input.MaxResults <= 0 {
		input.MaxResults = defaultSearchResults
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	rawHTML, err := t.manager.Content()
	if err != nil {
		return "", err
	}

	cleaned, err := cleanPage(rawHTML, 1<<20)
	if err != nil {
		return "", err
	}

	matches := findMatches(cleaned.Text, input.Query, input.CaseSensitive, input.MaxResults)
	if len(matches) == 0 {
		return fmt.Sprintf("No matches for %q on the current page", input.Query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d match(es) for %q:\n", len(matches), input.Query)
	for i, m := range matches {
		fmt.Fprintf(&b, "\n%d. ...%s...", i+1, m)
	}
	return b.String(), nil
}

// findMatches returns up to maxResults context snippets around each
// occurrence of query in text. Matching is done rune by rune in the
// original text so snippet offsets stay valid even where case folding
// changes a character's byte length.
func findMatches(text, query string, caseSensitive bool, maxResults int) []string {
	if query == "" {
		return nil
	}

	var matches []string
	for at := 0; at < len(text) && len(matches) < maxResults; {
		matchLen := matchLengthAt(text[at:], query, caseSensitive)
		if matchLen < 0 {
			_, size := utf8.DecodeRuneInString(text[at:])
			at += size
			continue
		}

		start := at - searchContextRadius
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		end := at + matchLen + searchContextRadius
		if end > len(text) {
			end = len(text)
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}
		snippet := strings.Join(strings.Fields(text[start:end]), " ")
		matches = append(matches, snippet)

		at += matchLen
	}
	return matches
}

// matchLengthAt reports the byte length of query matched at the start
// of s, or -1 when s does not begin with query.
func matchLengthAt(s, query string, caseSensitive bool) int {
	n := 0
	for _, qr := range query {
		sr, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 {
			return -1
		}
		if caseSensitive {
			if sr != qr {
				return -1
			}
		} else if unicode.ToLower(sr) != unicode.ToLower(qr) {
			return -1
		}
		n += size
	}
	return n
}
