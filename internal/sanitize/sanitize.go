// Package sanitize validates and cleans free text, search queries, and IDs
// before they cross any boundary (API call, AI prompt, storage).
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxInputLen  = 1000
	maxPromptLen = 2000
	maxQueryLen  = 100
	maxTweetLen  = 280
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)

	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i);\s*rm\s+-rf`),
		regexp.MustCompile(`(?i);\s*DROP\s+TABLE`),
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`\$\(.*\)`),
		regexp.MustCompile("`.*`"),
	}

	promptInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ignore\s+all\s+previous\s+instructions`),
		regexp.MustCompile(`(?i)disregard\s+.*\s+instructions`),
		regexp.MustCompile(`(?i)you\s+are\s+now`),
		regexp.MustCompile(`(?i)new\s+instructions:`),
		regexp.MustCompile(`(?i)system\s*:`),
		regexp.MustCompile(`(?i)assistant\s*:`),
		regexp.MustCompile(`<\|.*\|>`),
	}

	// Keep word chars plus the operators X query syntax uses (-is:retweet, "...", #, @).
	queryAllowed = regexp.MustCompile(`[^\w\s\-#@.,!?:"()]`)

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
)

// Input truncates, strips control characters and shell/SQL/XSS fragments,
// and collapses whitespace. Safe for storage and display.
func Input(text string) string {
	return inputCapped(text, maxInputLen)
}

func inputCapped(text string, maxLen int) string {
	if text == "" {
		return ""
	}
	if len(text) > maxLen {
		text = text[:maxLen]
	}
	text = controlChars.ReplaceAllString(text, "")
	for _, p := range dangerousPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return strings.Join(strings.Fields(text), " ")
}

// Query cleans a search query for API use, preserving X query operators.
func Query(query string) string {
	if query == "" {
		return ""
	}
	query = queryAllowed.ReplaceAllString(query, "")
	if len(query) > maxQueryLen {
		query = query[:maxQueryLen]
	}
	return strings.Join(strings.Fields(query), " ")
}

// ValidateTweetText checks that text is postable: non-empty, within the
// length ceiling, and not dominated by a single repeated word.
func ValidateTweetText(text string) (bool, string) {
	if text == "" {
		return false, "tweet text cannot be empty"
	}
	if len(text) > maxTweetLen {
		return false, "tweet too long"
	}
	if strings.TrimSpace(text) == "" {
		return false, "tweet contains only whitespace"
	}
	words := strings.Fields(text)
	if len(words) > 0 {
		counts := make(map[string]int, len(words))
		maxRep := 0
		for _, w := range words {
			counts[w]++
			if counts[w] > maxRep {
				maxRep = counts[w]
			}
		}
		if float64(maxRep) > float64(len(words))*0.5 {
			return false, "excessive word repetition"
		}
	}
	return true, ""
}

// ForPrompt cleans text before interpolation into an AI prompt,
// redacting common prompt-injection phrasings.
func ForPrompt(text string) string {
	text = inputCapped(text, maxPromptLen)
	for _, p := range promptInjectionPatterns {
		text = p.ReplaceAllString(text, "[redacted]")
	}
	return text
}

// ValidateUsername reports whether s is a well-formed X username.
// A leading @ is tolerated.
func ValidateUsername(s string) bool {
	s = strings.TrimPrefix(s, "@")
	return usernamePattern.MatchString(s)
}

// TweetID returns the ID if it is a plausible numeric tweet ID, else "".
func TweetID(id string) string {
	if id == "" || len(id) > 20 {
		return ""
	}
	for _, r := range id {
		if !unicode.IsDigit(r) {
			return ""
		}
	}
	return id
}
