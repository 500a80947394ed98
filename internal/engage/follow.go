package engage

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"growthbot/internal/model"
	"growthbot/internal/policy"
	"growthbot/internal/score"
)

// FollowRun follows up to target authors from the candidate pool, ranked
// by follow-worthiness. Followed users are persisted so the unfollow run
// can later reap non-reciprocators.
func (r *Runner) FollowRun(ctx context.Context, candidates []model.Candidate, target int) int {
	now := r.now().UTC()

	type ranked struct {
		cand  model.Candidate
		score float64
	}
	var pool []ranked
	seen := make(map[string]struct{})
	for _, c := range candidates {
		if c.AuthorID == "" {
			continue
		}
		if _, dup := seen[c.AuthorID]; dup {
			continue
		}
		seen[c.AuthorID] = struct{}{}
		if score.IsLikelyBot(c.Author, now) {
			continue
		}
		s := score.FollowWorthiness(c.Author, c.Tweet, now)
		if s < r.cfg.Scoring.FollowFloor {
			continue
		}
		pool = append(pool, ranked{cand: c, score: s})
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].score > pool[j].score })

	performed := 0
	for _, p := range pool {
		if performed >= target {
			break
		}
		c := p.cand
		username := c.Author.Username
		if r.session.Engaged("follow", username) {
			continue
		}
		if following, err := r.db.IsFollowing(ctx, c.AuthorID); err == nil && following {
			continue
		}
		if !r.policy.CanEngage(ctx, "follow", c.AuthorID, username, policy.FollowCooldownHours) {
			continue
		}
		if !r.allow(ctx, "follow") {
			break
		}

		if !r.dryRun() {
			if err := r.client.Follow(ctx, r.self.ID, c.AuthorID); err != nil {
				log.Warn("follow failed", "user", username, "err", err)
				r.record(ctx, model.ActivityLog{
					Action: "follow", TargetID: c.AuthorID, TargetType: "user",
					TargetUser: username, TargetUserID: c.AuthorID, Success: false,
					Metadata: map[string]any{"error": err.Error()},
				})
				continue
			}
		}

		r.consume(ctx, "follow")
		if err := r.db.InsertFollowedUser(ctx, model.FollowedUser{
			UserID: c.AuthorID, Username: username,
			FollowersCount: c.Author.FollowersCount, FollowingCount: c.Author.FollowingCount,
			FollowScore: p.score, FollowedAt: r.now().UTC(),
			SourceQuery: c.ResearchQuery, SourceTweetID: c.ID,
		}); err != nil {
			log.Error("followed-user record failed", "user", username, "err", err)
		}
		r.record(ctx, model.ActivityLog{
			Action: "follow", TargetID: c.AuthorID, TargetType: "user",
			TargetUser: username, TargetUserID: c.AuthorID, Success: true,
			Metadata: map[string]any{"follow_score": p.score, "followers": c.Author.FollowersCount},
		})
		r.session.MarkEngaged("follow", username)
		performed++
		log.Info("followed", "user", username, "score", p.score, "dry_run", r.dryRun())
		r.pace(ctx)
	}
	return performed
}
