package score

import (
	"strings"
	"time"

	"growthbot/internal/model"
)

// CandidateValue scores a tweet for reply-worthiness (0-100). The account
// authenticity gate is applied first; a gated account forces 0.
func CandidateValue(t model.Tweet, now time.Time) float64 {
	text := strings.TrimSpace(t.Text)
	if text == "" {
		return 0
	}

	isReal, accountScore := Authenticity(t.Author, t, now)
	if !isReal {
		return 0
	}

	score := accountScore * 0.6

	switch engagement := t.Engagement(); {
	case engagement >= 80:
		score += 20
	case engagement >= 25:
		score += 14
	case engagement >= 8:
		score += 9
	case engagement >= 1:
		score += 4
	}

	// Prefer conversational text over link dumps and low-context lines.
	lowered := strings.ToLower(text)
	words := len(strings.Fields(text))
	switch {
	case strings.Contains(lowered, "http://") || strings.Contains(lowered, "https://"):
		score -= 20
	case words >= 12:
		score += 8
	case words >= 8:
		score += 4
	default:
		score -= 10
	}

	return clamp(score)
}

// ReplyQuality scores a drafted reply's usefulness (0-100). Lexical only:
// rewards concreteness signals and the conversational sweet spot, penalizes
// generic filler.
func ReplyQuality(reply string) float64 {
	if strings.TrimSpace(reply) == "" {
		return 0
	}
	text := strings.ToLower(strings.TrimSpace(reply))
	score := 0.0

	if strings.Contains(text, "?") {
		score += 8
	}
	if containsAny(text, []string{"one practical move", "in practice", "you can", "i'd start with", "the key is"}) {
		score += 16
	}
	if containsAny(text, []string{"metric", "tradeoff", "risk", "test", "pilot", "measure", "outcome"}) {
		score += 25
	}
	if containsAny(text, []string{"next step", "would you", "how would", "which part"}) {
		score += 18
	}

	switch words := len(strings.Fields(text)); {
	case words >= 10 && words <= 30:
		score += 20
	case words >= 6 && words < 10:
		score += 10
	}

	if containsAny(text, []string{"great point", "totally agree", "thanks for sharing", "nice post"}) {
		score -= 30
	}

	return clamp(score)
}

// PostQuality scores a drafted original post (0-100).
func PostQuality(post string) float64 {
	if strings.TrimSpace(post) == "" {
		return 0
	}
	text := strings.ToLower(strings.TrimSpace(post))
	score := 0.0

	if containsAny(text, []string{"how to", "checklist", "framework", "metric", "tradeoff", "risk"}) {
		score += 30
	}
	if containsAny(text, []string{"for example", "e.g.", "start with", "first step"}) {
		score += 25
	}
	if strings.Contains(text, "?") {
		score += 8
	}

	switch words := len(strings.Fields(text)); {
	case words >= 18 && words <= 45:
		score += 20
	case words >= 10 && words < 18:
		score += 12
	}

	if containsAny(text, []string{"gm", "good morning", "just sharing", "random thought"}) {
		score -= 20
	}

	return clamp(score)
}

// IsLowValueText gates generated output: generic phrasing, too short, or
// no value signal at all means the draft is not worth publishing.
func IsLowValueText(text string) bool {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return true
	}
	if containsAny(lowered, []string{"great point", "totally agree", "that's interesting", "thanks for sharing", "nice post"}) {
		return true
	}
	if len(strings.Fields(lowered)) < 7 {
		return true
	}
	return !containsAny(lowered, []string{"?", "tradeoff", "metric", "measure", "test", "pilot", "rollout", "risk", "impact"})
}

// LowValueReplyTarget skips aggregator/update-style accounts and
// machine-like text targets.
func LowValueReplyTarget(username, text string) bool {
	u := strings.ToLower(strings.TrimSpace(username))
	t := strings.ToLower(strings.TrimSpace(text))
	if u == "" {
		return true
	}
	if containsAny(u, []string{"updates", "update", "repo", "signal", "news", "alerts", "bot"}) {
		return true
	}
	if digitRatio(u) > 0.35 {
		return true
	}
	return containsAny(t, []string{"release notes", "new version", "just updated", "changelog", "patch notes"})
}

func containsAny(lowered string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lowered, n) {
			return true
		}
	}
	return false
}
