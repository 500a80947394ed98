package engage

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"growthbot/internal/model"
	"growthbot/internal/policy"
	"growthbot/internal/score"
)

// LikeRun likes up to target tweets from the candidate pool. Candidates
// are expected pre-scored and sorted; gates here are per-target.
func (r *Runner) LikeRun(ctx context.Context, candidates []model.Candidate, target int) int {
	performed := 0
	now := r.now().UTC()
	for _, c := range candidates {
		if performed >= target {
			break
		}
		username := c.Author.Username
		if r.session.Engaged("like", username) {
			continue
		}
		if score.IsLikelyBot(c.Author, now) {
			log.Debug("like skipped, bot-like author", "author", username)
			continue
		}
		if c.CandidateScore < r.cfg.Scoring.CandidateFloor {
			continue
		}
		if liked, err := r.db.AlreadyLiked(ctx, c.ID); err == nil && liked {
			continue
		}
		pileOnSince := now.Add(-pileOnLikeHours * time.Hour)
		if recent, err := r.db.RecentlyLikedAuthor(ctx, c.AuthorID, pileOnSince); err == nil && recent {
			log.Debug("like skipped, author liked recently", "author", username)
			continue
		}
		if !r.policy.CanEngage(ctx, "like", c.AuthorID, username, policy.EngageCooldownHours) {
			continue
		}
		if !r.allow(ctx, "like") {
			break
		}

		if !r.dryRun() {
			if err := r.client.Like(ctx, r.self.ID, c.ID); err != nil {
				log.Warn("like failed", "tweet", c.ID, "err", err)
				r.record(ctx, model.ActivityLog{
					Action: "like", TargetID: c.ID, TargetType: "tweet",
					TargetUser: username, TargetUserID: c.AuthorID, Success: false,
					Metadata: map[string]any{"error": err.Error()},
				})
				continue
			}
		}

		r.consume(ctx, "like")
		likedAt := r.now().UTC()
		if err := r.db.UpsertTrackedTweet(ctx, model.TrackedTweet{
			TweetID: c.ID, AuthorID: c.AuthorID, AuthorUsername: username,
			Text: c.Text, Likes: c.LikeCount, Retweets: c.RetweetCount, Replies: c.ReplyCount,
			QualityScore: c.CandidateScore, CreatedAt: c.CreatedAt,
			LikedAt: &likedAt, SearchQuery: c.ResearchQuery,
		}); err != nil {
			log.Error("tweet tracking failed", "tweet", c.ID, "err", err)
		}
		r.record(ctx, model.ActivityLog{
			Action: "like", TargetID: c.ID, TargetType: "tweet",
			TargetUser: username, TargetUserID: c.AuthorID, Success: true,
			Metadata: map[string]any{"score": c.CandidateScore, "query": c.ResearchQuery},
		})
		r.session.MarkEngaged("like", username)
		performed++
		log.Info("liked", "tweet", c.ID, "author", username, "score", c.CandidateScore, "dry_run", r.dryRun())
		r.pace(ctx)
	}
	return performed
}
