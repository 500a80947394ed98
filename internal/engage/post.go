package engage

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"growthbot/internal/model"
	"growthbot/internal/score"
)

// PostRun drafts and publishes one original post about topic. Posting is
// held to peak hours unless force is set; off-peak calls are a quiet no-op
// so the scheduler can invoke this every run.
func (r *Runner) PostRun(ctx context.Context, topic string, force bool) bool {
	if !force && !r.inPeakHour() {
		log.Debug("post skipped, off-peak hour", "hour", r.now().Hour())
		return false
	}
	if !r.allow(ctx, "post") {
		return false
	}

	niche := strings.Join(r.cfg.Account.Niche, ", ")
	text := r.drafter.BestPost(ctx, topic, niche)
	if text == "" {
		log.Warn("no publishable post draft", "topic", topic)
		return false
	}

	var tweetID string
	if !r.dryRun() {
		id, err := r.client.PostTweet(ctx, text)
		if err != nil {
			log.Warn("post failed", "topic", topic, "err", err)
			r.record(ctx, model.ActivityLog{
				Action: "post", TargetType: "tweet", Success: false,
				Metadata: map[string]any{"topic": topic, "error": err.Error()},
			})
			return false
		}
		tweetID = id
	}

	r.consume(ctx, "post")
	r.record(ctx, model.ActivityLog{
		Action: "post", TargetID: tweetID, TargetType: "tweet", Success: true,
		Metadata: map[string]any{
			"topic":   topic,
			"text":    text,
			"quality": score.PostQuality(text),
		},
	})
	log.Info("posted", "topic", topic, "tweet", tweetID, "dry_run", r.dryRun())
	return true
}

func (r *Runner) inPeakHour() bool {
	hours := r.cfg.Behavior.PeakPostingHours
	if len(hours) == 0 {
		return true
	}
	h := r.now().Hour()
	for _, ph := range hours {
		if h == ph {
			return true
		}
	}
	return false
}
