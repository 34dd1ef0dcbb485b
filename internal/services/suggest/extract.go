package suggest

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Comment stripping is regex based and will mangle string values that
// legitimately contain "//" or "/*" (say, a URL in a recipe note). Known
// limitation, kept to match how responses have been handled so far.
var (
	lineCommentRe  = regexp.MustCompile(`//.*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	fencedJSONRe   = regexp.MustCompile("(?s)```json(.*?)```")
)

func stripJSONComments(text string) string {
	text = lineCommentRe.ReplaceAllString(text, "")
	text = blockCommentRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// balancedJSONSnippet returns the first brace-balanced {...} span, or "" if
// the text never closes the object it opens.
func balancedJSONSnippet(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func tryParseCandidate(candidate string) (map[string]any, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	cleaned := stripJSONComments(candidate)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// ExtractJSON locates a JSON object inside arbitrary surrounding text.
// Strategies run in order, first success wins:
//
//  1. strip markdown fence markers and comments, parse the whole text
//  2. parse the first brace-balanced {...} span
//  3. parse each ```json fenced block of the original text in order
//
// A false return means "no JSON found" - an expected outcome for a model
// response, not an error.
func ExtractJSON(text string) (map[string]any, bool) {
	if text == "" {
		return nil, false
	}

	raw := strings.ReplaceAll(text, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	raw = strings.TrimSpace(raw)

	if parsed, ok := tryParseCandidate(raw); ok {
		return parsed, true
	}

	if snippet := balancedJSONSnippet(raw); snippet != "" {
		if parsed, ok := tryParseCandidate(snippet); ok {
			return parsed, true
		}
	}

	for _, m := range fencedJSONRe.FindAllStringSubmatch(text, -1) {
		if parsed, ok := tryParseCandidate(m[1]); ok {
			return parsed, true
		}
	}

	return nil, false
}
