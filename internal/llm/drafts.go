package llm

import (
	"context"
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"

	"growthbot/internal/sanitize"
	"growthbot/internal/score"
)

// Drafter generates several drafts per request and keeps the best one
// that clears the quality floor.
type Drafter struct {
	gen        Generator
	maxDrafts  int
	draftFloor float64
	rng        *rand.Rand
}

func NewDrafter(gen Generator, maxDrafts int, draftFloor float64) *Drafter {
	if maxDrafts < 1 {
		maxDrafts = 1
	}
	return &Drafter{gen: gen, maxDrafts: maxDrafts, draftFloor: draftFloor, rng: rand.New(rand.NewSource(rand.Int63()))}
}

type scoredDraft struct {
	score float64
	text  string
}

// BestReply drafts replies from shuffled angles and returns the highest
// scoring one at or above the floor. When every draft falls short, the
// deterministic value-fallback template is used, so a usable reply is
// always returned unless even the fallback fails validation.
func (d *Drafter) BestReply(ctx context.Context, tweetText, author string) string {
	angles := []string{"practical", "contrasting", "supportive", "conversational", "curious", "questioning"}
	d.rng.Shuffle(len(angles), func(i, j int) { angles[i], angles[j] = angles[j], angles[i] })

	budget := d.maxDrafts
	if budget > 4 {
		budget = 4
	}
	var drafts []scoredDraft
	for _, angle := range angles[:budget] {
		// Statement-heavy mix reads less bot-like than question spam.
		mode := "mixed"
		if d.rng.Float64() < 0.7 {
			mode = "statement"
		}
		if angle == "questioning" {
			mode = "question"
		}
		text, err := d.gen.Generate(ctx, replySystem, ReplyPrompt(tweetText, author, angle, mode), 100)
		if err != nil {
			log.Warn("reply generation failed", "angle", angle, "err", err)
			continue
		}
		if text == "" || score.IsLowValueText(text) {
			continue
		}
		if ok, _ := sanitize.ValidateTweetText(text); !ok {
			continue
		}
		drafts = append(drafts, scoredDraft{score: score.ReplyQuality(text), text: text})
	}

	if len(drafts) > 0 {
		sort.SliceStable(drafts, func(i, j int) bool { return drafts[i].score > drafts[j].score })
		if drafts[0].score >= d.draftFloor {
			return drafts[0].text
		}
	}

	fallback := d.valueFallbackReply(tweetText, author)
	if ok, _ := sanitize.ValidateTweetText(fallback); !ok {
		return ""
	}
	return fallback
}

// BestPost drafts original posts across angles and returns the best one
// at or above the floor, or "" when nothing publishable came out.
func (d *Drafter) BestPost(ctx context.Context, topic, niche string) string {
	angles := []string{"practical", "insights", "critical", "educational", "conversational"}
	budget := d.maxDrafts
	if budget > len(angles) {
		budget = len(angles)
	}
	var drafts []scoredDraft
	for _, angle := range angles[:budget] {
		text, err := d.gen.Generate(ctx, postSystem, PostPrompt(topic, niche, angle), 120)
		if err != nil {
			log.Warn("post generation failed", "angle", angle, "err", err)
			continue
		}
		if text == "" {
			continue
		}
		if ok, _ := sanitize.ValidateTweetText(text); !ok {
			continue
		}
		drafts = append(drafts, scoredDraft{score: score.PostQuality(text), text: text})
	}
	if len(drafts) == 0 {
		return ""
	}
	sort.SliceStable(drafts, func(i, j int) bool { return drafts[i].score > drafts[j].score })
	if drafts[0].score < d.draftFloor {
		return ""
	}
	return drafts[0].text
}
