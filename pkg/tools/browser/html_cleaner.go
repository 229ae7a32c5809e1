package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CleanedPage holds readable page content with metadata.
type CleanedPage struct {
	Text        string
	Title       string
	Description string
	Truncated   bool
}

// cleanPage reduces raw HTML to readable text for the planner, dropping
// scripts, styles, and other noise while keeping link targets visible.
func cleanPage(rawHTML string, maxLength int) (*CleanedPage, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	result := &CleanedPage{
		Title:       extractTitle(doc),
		Description: extractMetaDescription(doc),
	}

	var builder strings.Builder
	var length int
	result.Truncated = renderText(doc, &builder, &length, maxLength)
	result.Text = normalizeBlankLines(builder.String())
	return result, nil
}

// renderText walks the node tree appending readable text. Returns true when
// the maxLength limit ran out.
func renderText(n *html.Node, builder *strings.Builder, length *int, maxLength int) bool {
	if *length >= maxLength {
		return true
	}

	switch n.Type {
	case html.CommentNode:
		return false
	case html.TextNode:
		return appendText(strings.TrimSpace(n.Data), builder, length, maxLength)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) {
			return false
		}
		if isBlockElement(tag) && builder.Len() > 0 {
			builder.WriteString("\n")
		}
		if tag == "a" {
			return renderLink(n, builder, length, maxLength)
		}
		if tag == "br" {
			builder.WriteString("\n")
			return false
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if renderText(c, builder, length, maxLength) {
			return true
		}
	}
	return false
}

// renderLink renders an anchor as "text [href]" so the planner can see
// where a link leads without the raw markup.
func renderLink(n *html.Node, builder *strings.Builder, length *int, maxLength int) bool {
	var href string
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == "href" {
			href = attr.Val
			break
		}
	}

	var textBuilder strings.Builder
	var textLen int
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(c, &textBuilder, &textLen, maxLength)
	}
	text := strings.TrimSpace(textBuilder.String())

	rendered := text
	if href != "" && !strings.HasPrefix(href, "#") && !strings.HasPrefix(href, "javascript:") {
		if rendered == "" {
			rendered = href
		} else {
			rendered = fmt.Sprintf("%s [%s]", text, href)
		}
	}
	return appendText(rendered, builder, length, maxLength)
}

// appendText writes a text fragment honoring the length limit.
func appendText(text string, builder *strings.Builder, length *int, maxLength int) bool {
	if text == "" {
		return false
	}

	// Separate inline fragments that would otherwise run together.
	if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n") {
		builder.WriteString(" ")
	}

	if *length+len(text) > maxLength {
		remaining := maxLength - *length
		if remaining > 0 {
			builder.WriteString(trimToRuneBoundary(text, remaining))
		}
		builder.WriteString("...")
		*length = maxLength
		return true
	}

	builder.WriteString(text)
	*length += len(text)
	return false
}

// normalizeBlankLines collapses runs of blank lines left by nested block
// elements.
func normalizeBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// isSkippedElement returns true for elements removed entirely.
func isSkippedElement(tagName string) bool {
	skipped := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"iframe":   true,
		"embed":    true,
		"object":   true,
		"svg":      true,
		"template": true,
		"head":     true,
	}
	return skipped[tagName]
}

// isBlockElement returns true for block-level elements (for line breaks).
func isBlockElement(tagName string) bool {
	blocks := map[string]bool{
		"div":        true,
		"p":          true,
		"section":    true,
		"article":    true,
		"header":     true,
		"footer":     true,
		"nav":        true,
		"main":       true,
		"aside":      true,
		"h1":         true,
		"h2":         true,
		"h3":         true,
		"h4":         true,
		"h5":         true,
		"h6":         true,
		"ul":         true,
		"ol":         true,
		"li":         true,
		"table":      true,
		"tr":         true,
		"td":         true,
		"th":         true,
		"form":       true,
		"fieldset":   true,
		"blockquote": true,
		"pre":        true,
	}
	return blocks[tagName]
}

// extractTitle extracts the page title from the document.
func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if title != "" {
				return
			}
		}
	}
	traverse(doc)
	return title
}

// extractMetaDescription extracts the meta description from the document.
func extractMetaDescription(doc *html.Node) string {
	var description string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var isDescription bool
			var content string
			for _, attr := range n.Attr {
				if attr.Key == "name" && attr.Val == "description" {
					isDescription = true
				}
				if attr.Key == "content" {
					content = attr.Val
				}
			}
			if isDescription && content != "" {
				description = strings.TrimSpace(content)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if description != "" {
				return
			}
		}
	}
	traverse(doc)
	return description
}
