package llm

import (
	"fmt"
	"regexp"
	"strings"
)

var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"they": {}, "their": {}, "there": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "will": {}, "would": {}, "could": {}, "should": {}, "about": {},
	"because": {}, "really": {}, "just": {}, "like": {}, "more": {}, "than": {},
	"then": {}, "them": {}, "some": {}, "very": {}, "your": {}, "into": {},
	"over": {}, "only": {}, "also": {}, "most": {}, "much": {}, "many": {},
	"does": {}, "doing": {}, "being": {}, "were": {}, "every": {}, "still": {},
	"https": {}, "http": {},
}

var focusTermRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_\-]{3,}`)

// ExtractFocusTerms pulls up to limit salient words out of a tweet so a
// templated reply can reference the subject instead of sounding canned.
func ExtractFocusTerms(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var terms []string
	for _, raw := range focusTermRe.FindAllString(text, -1) {
		w := strings.ToLower(raw)
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
		if len(terms) >= limit {
			break
		}
	}
	return terms
}

// valueFallbackReply builds a deterministic-shape reply when every
// generated draft missed the quality floor. Templates rotate to avoid
// posting identical text twice in a run.
func (d *Drafter) valueFallbackReply(tweetText, author string) string {
	author = strings.TrimPrefix(strings.TrimSpace(author), "@")
	terms := ExtractFocusTerms(tweetText, 2)

	var subject string
	switch len(terms) {
	case 0:
		subject = "this"
	case 1:
		subject = terms[0]
	default:
		subject = terms[0] + " and " + terms[1]
	}

	templates := []string{
		"@%s The part about %s stands out. In practice the hard bit is keeping it working once real traffic hits; measuring that early pays off.",
		"@%s Worth separating %s from the surrounding noise here. Most teams skip that step and pay for it later.",
		"@%s Seen this play out with %s before. The version that survives is the one with a feedback loop, not the cleverest first attempt.",
		"@%s One thing that helps with %s: write down what success looks like before changing anything, then check against it weekly.",
	}
	tmpl := templates[d.rng.Intn(len(templates))]
	return fmt.Sprintf(tmpl, author, subject)
}
