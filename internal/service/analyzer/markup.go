package analyzer

import (
	"regexp"
	"strings"
)

var (
	lineBreakTagPattern = regexp.MustCompile(`(?i)<\s*(br|/p|/li|/div|/h[1-6]|/tr)\s*/?\s*>`)
	markupTagPattern    = regexp.MustCompile(`<[^>]+>`)
	spacesPattern       = regexp.MustCompile(`[ \t]+`)
	blankLinesPattern   = regexp.MustCompile(`\n{2,}`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// stripMarkup flattens an HTML-ish description to plain text. Block-level
// closers become newlines so list-shaped lines survive for rubric
// extraction; remaining tags are dropped and whitespace collapsed.
func stripMarkup(raw string) string {
	text := lineBreakTagPattern.ReplaceAllString(raw, "\n")
	text = markupTagPattern.ReplaceAllString(text, " ")
	text = entityReplacer.Replace(text)
	text = spacesPattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}

// collapseWhitespace reduces any whitespace run to a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
