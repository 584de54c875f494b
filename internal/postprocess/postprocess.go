// Package postprocess strips common LLM artifacts from generated
// translations before they are cached and assembled.
package postprocess

import (
	"regexp"
	"strings"
)

// labelEchoRe matches a leading "TRANSLATION:"-style label. The prompts end
// with that label, and models sometimes echo it back despite instructions.
var labelEchoRe = regexp.MustCompile(`(?i)^(?:the )?translation(?: \(maintain consistency with previous\))?\s*:\s*`)

// Clean removes a leading label echo and a matching pair of wrapping quotes,
// then trims whitespace.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	if loc := labelEchoRe.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
	}
	return unwrapQuotes(text)
}

func unwrapQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	wrapped := (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '“' && last == '”')
	if !wrapped {
		return text
	}
	return strings.TrimSpace(string(runes[1 : n-1]))
}
