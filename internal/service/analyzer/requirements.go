package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/courseflow/workflow-service/internal/models"
)

// wordCountPatterns are tried in priority order; the first hit wins.
var wordCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+)\s+words\b`),
	regexp.MustCompile(`(?i)\bword\s+count\s*:?\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bminimum\s+(?:of\s+)?(\d+)\s+words\b`),
	regexp.MustCompile(`(?i)\bat\s+least\s+(\d+)\s+words\b`),
}

var pageCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+)\s+pages?\b`),
	regexp.MustCompile(`(?i)\bpage\s+count\s*:?\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bminimum\s+(?:of\s+)?(\d+)\s+pages?\b`),
	regexp.MustCompile(`(?i)\bat\s+least\s+(\d+)\s+pages?\b`),
}

var citationPattern = regexp.MustCompile(`(?i)\b(cite|citations?|bibliography|references|works\s+cited|MLA|APA|Chicago)\b`)

// citationStyles is the fixed precedence for style detection.
var citationStyles = []struct {
	pattern *regexp.Regexp
	style   string
}{
	{regexp.MustCompile(`(?i)\bMLA\b`), "MLA"},
	{regexp.MustCompile(`(?i)\bAPA\b`), "APA"},
	{regexp.MustCompile(`(?i)\bChicago\b`), "Chicago"},
}

var (
	hrefPattern   = regexp.MustCompile(`(?is)<a[^>]+href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</a>`)
	rubricPattern = regexp.MustCompile(`^\s*(?:\d+[.)]|\*|-)\s+(.+)$`)
	topicsPattern = regexp.MustCompile(`(?i)\btopics?\s*:\s*([^\n.]+)`)
)

// keyPhrasePatterns pick out imperative requirement sentences.
var keyPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:should|must)\s+(?:have|include|contain|address|discuss|analyze)\s+[^.!?\n]+`),
	regexp.MustCompile(`(?i)\b(?:ensure|make\s+sure\s+that)\s+[^.!?\n]+`),
	regexp.MustCompile(`(?i)\b(?:focus\s+on|write\s+about|discuss|analyze)\s+[^.!?\n]+`),
}

const (
	keyPhraseMinLen = 5
	keyPhraseMaxLen = 150
	rubricMinLen    = 10
	rubricMaxLen    = 200
)

// extractRequirements mines the description for structured requirements.
// rawDescription keeps the original markup (hyperlinks only live there);
// lineText preserves line breaks for rubric detection; cleanText is
// fully collapsed prose.
func extractRequirements(rawDescription, lineText, cleanText string) models.Requirements {
	req := models.Requirements{}

	for _, p := range wordCountPatterns {
		if m := p.FindStringSubmatch(cleanText); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				req.WordCount = n
			}
			break
		}
	}

	for _, p := range pageCountPatterns {
		if m := p.FindStringSubmatch(cleanText); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				req.PageCount = n
			}
			break
		}
	}

	if citationPattern.MatchString(cleanText) {
		req.Citations = true
		for _, cs := range citationStyles {
			if cs.pattern.MatchString(cleanText) {
				req.CitationStyle = cs.style
				break
			}
		}
	}

	if m := topicsPattern.FindStringSubmatch(cleanText); m != nil {
		for _, topic := range strings.Split(m[1], ",") {
			topic = strings.TrimSpace(topic)
			if topic != "" {
				req.Topics = append(req.Topics, topic)
			}
		}
	}

	req.Resources = extractResources(rawDescription)
	req.RubricItems = extractRubricItems(lineText)
	req.KeyPhrases = extractKeyPhrases(cleanText)

	return req
}

func extractResources(rawDescription string) []models.Resource {
	var resources []models.Resource

	for _, m := range hrefPattern.FindAllStringSubmatch(rawDescription, -1) {
		url := strings.TrimSpace(m[1])
		if url == "" || strings.HasPrefix(strings.ToLower(url), "javascript:") {
			continue
		}
		title := collapseWhitespace(markupTagPattern.ReplaceAllString(m[2], " "))
		resources = append(resources, models.Resource{URL: url, Title: title})
	}

	return resources
}

func extractRubricItems(lineText string) []string {
	var items []string

	for _, line := range strings.Split(lineText, "\n") {
		m := rubricPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[1])
		if len(body) >= rubricMinLen && len(body) <= rubricMaxLen {
			items = append(items, body)
		}
	}

	return items
}

func extractKeyPhrases(cleanText string) []string {
	var phrases []string
	seen := make(map[string]bool)

	for _, p := range keyPhrasePatterns {
		for _, m := range p.FindAllString(cleanText, -1) {
			phrase := strings.TrimSpace(m)
			if len(phrase) < keyPhraseMinLen || len(phrase) > keyPhraseMaxLen {
				continue
			}
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
			phrases = append(phrases, phrase)
		}
	}

	return phrases
}
