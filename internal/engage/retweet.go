package engage

import (
	"context"

	"github.com/charmbracelet/log"

	"growthbot/internal/model"
	"growthbot/internal/policy"
)

// RetweetRun retweets up to target high-engagement candidates. Retweets
// amplify under our own name, so the engagement floor and cooldown are
// stricter than for likes.
func (r *Runner) RetweetRun(ctx context.Context, candidates []model.Candidate, target int) int {
	performed := 0
	for _, c := range candidates {
		if performed >= target {
			break
		}
		username := c.Author.Username
		if r.session.Engaged("retweet", username) {
			continue
		}
		if c.Engagement() < retweetEngagementFloor {
			continue
		}
		if c.CandidateScore < r.cfg.Scoring.CandidateFloor {
			continue
		}
		if !r.policy.CanEngage(ctx, "retweet", c.AuthorID, username, policy.RetweetCooldownHours) {
			continue
		}
		if !r.allow(ctx, "retweet") {
			break
		}

		if !r.dryRun() {
			if err := r.client.Retweet(ctx, r.self.ID, c.ID); err != nil {
				log.Warn("retweet failed", "tweet", c.ID, "err", err)
				r.record(ctx, model.ActivityLog{
					Action: "retweet", TargetID: c.ID, TargetType: "tweet",
					TargetUser: username, TargetUserID: c.AuthorID, Success: false,
					Metadata: map[string]any{"error": err.Error()},
				})
				continue
			}
		}

		r.consume(ctx, "retweet")
		retweetedAt := r.now().UTC()
		if err := r.db.UpsertTrackedTweet(ctx, model.TrackedTweet{
			TweetID: c.ID, AuthorID: c.AuthorID, AuthorUsername: username,
			Text: c.Text, Likes: c.LikeCount, Retweets: c.RetweetCount, Replies: c.ReplyCount,
			QualityScore: c.CandidateScore, CreatedAt: c.CreatedAt,
			RetweetedAt: &retweetedAt, SearchQuery: c.ResearchQuery,
		}); err != nil {
			log.Error("tweet tracking failed", "tweet", c.ID, "err", err)
		}
		r.record(ctx, model.ActivityLog{
			Action: "retweet", TargetID: c.ID, TargetType: "tweet",
			TargetUser: username, TargetUserID: c.AuthorID, Success: true,
			Metadata: map[string]any{"engagement": c.Engagement(), "query": c.ResearchQuery},
		})
		r.session.MarkEngaged("retweet", username)
		performed++
		log.Info("retweeted", "tweet", c.ID, "author", username, "dry_run", r.dryRun())
		r.pace(ctx)
	}
	return performed
}
