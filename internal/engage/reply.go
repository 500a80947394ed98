package engage

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"growthbot/internal/model"
	"growthbot/internal/policy"
	"growthbot/internal/score"
)

// ReplyRun replies to up to target candidates. Callers pass the output of
// selector.Select, so author dedup and authenticity are already done; this
// run adds the reply-specific gates and the draft pipeline.
func (r *Runner) ReplyRun(ctx context.Context, candidates []model.Candidate, target int) int {
	performed := 0
	for _, c := range candidates {
		if performed >= target {
			break
		}
		username := c.Author.Username
		if r.session.Engaged("reply", username) {
			continue
		}
		if score.LowValueReplyTarget(username, c.Text) {
			log.Debug("reply skipped, low-value target", "author", username)
			continue
		}
		// Link dumps and near-empty tweets give a draft nothing to work with.
		lowered := strings.ToLower(c.Text)
		if strings.Contains(lowered, "http://") || strings.Contains(lowered, "https://") {
			continue
		}
		if len(strings.Fields(c.Text)) < 5 {
			continue
		}
		if !r.policy.CanReply(ctx, c.AuthorID, username) {
			continue
		}
		if r.policy.HasRecentEngagement(ctx, c.AuthorID, username, policy.PileOnCooldownHours) {
			log.Debug("reply skipped, recent engagement with author", "author", username)
			continue
		}
		if !r.allow(ctx, "reply") {
			break
		}

		text := r.drafter.BestReply(ctx, c.Text, username)
		if text == "" {
			log.Warn("no publishable reply draft", "tweet", c.ID)
			continue
		}

		var replyID string
		if !r.dryRun() {
			id, err := r.client.Reply(ctx, c.ID, text)
			if err != nil {
				log.Warn("reply failed", "tweet", c.ID, "err", err)
				r.record(ctx, model.ActivityLog{
					Action: "reply", TargetID: c.ID, TargetType: "tweet",
					TargetUser: username, TargetUserID: c.AuthorID, Success: false,
					Metadata: map[string]any{"error": err.Error()},
				})
				continue
			}
			replyID = id
		}

		r.consume(ctx, "reply")
		r.record(ctx, model.ActivityLog{
			Action: "reply", TargetID: c.ID, TargetType: "tweet",
			TargetUser: username, TargetUserID: c.AuthorID, Success: true,
			Metadata: map[string]any{
				"reply_id": replyID,
				"text":     text,
				"quality":  score.ReplyQuality(text),
				"query":    c.ResearchQuery,
			},
		})
		r.session.MarkEngaged("reply", username)
		performed++
		log.Info("replied", "tweet", c.ID, "author", username, "dry_run", r.dryRun())
		r.pace(ctx)
	}
	return performed
}
