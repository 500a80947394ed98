package engage

import (
	"context"

	"github.com/charmbracelet/log"

	"growthbot/internal/model"
)

// UnfollowRun reconciles the followed-user book against the platform and
// unfollows up to target stale accounts. Two passes: first mark everyone
// who followed back, then reap users past the grace window who did not.
func (r *Runner) UnfollowRun(ctx context.Context, target int) int {
	followerSet := r.loadFollowerSet(ctx)

	cutoff := r.now().UTC().AddDate(0, 0, -r.cfg.Behavior.UnfollowAfterDays)
	stale, err := r.db.StaleNonFollowbacks(ctx, cutoff, target*2)
	if err != nil {
		log.Error("stale follow lookup failed", "err", err)
		return 0
	}

	performed := 0
	for _, u := range stale {
		if performed >= target {
			break
		}
		if followerSet != nil {
			if _, back := followerSet[u.UserID]; back {
				if err := r.db.MarkFollowedBack(ctx, u.UserID); err != nil {
					log.Error("followback mark failed", "user", u.Username, "err", err)
				}
				continue
			}
		}
		if !r.allow(ctx, "unfollow") {
			break
		}

		if !r.dryRun() {
			if err := r.client.Unfollow(ctx, r.self.ID, u.UserID); err != nil {
				log.Warn("unfollow failed", "user", u.Username, "err", err)
				r.record(ctx, model.ActivityLog{
					Action: "unfollow", TargetID: u.UserID, TargetType: "user",
					TargetUser: u.Username, TargetUserID: u.UserID, Success: false,
					Metadata: map[string]any{"error": err.Error()},
				})
				continue
			}
		}

		r.consume(ctx, "unfollow")
		if err := r.db.MarkUnfollowed(ctx, u.UserID, "no_followback", r.now().UTC()); err != nil {
			log.Error("unfollow record failed", "user", u.Username, "err", err)
		}
		r.record(ctx, model.ActivityLog{
			Action: "unfollow", TargetID: u.UserID, TargetType: "user",
			TargetUser: u.Username, TargetUserID: u.UserID, Success: true,
			Metadata: map[string]any{
				"reason":        "no_followback",
				"followed_days": int(r.now().UTC().Sub(u.FollowedAt).Hours() / 24),
			},
		})
		performed++
		log.Info("unfollowed", "user", u.Username, "dry_run", r.dryRun())
		r.pace(ctx)
	}
	return performed
}

// loadFollowerSet fetches our current followers as a set. A nil return
// means the fetch failed; callers must then skip followback detection
// rather than treat everyone as a non-follower.
func (r *Runner) loadFollowerSet(ctx context.Context) map[string]struct{} {
	ids, err := r.client.GetFollowerIDs(ctx, r.self.ID)
	if err != nil {
		log.Warn("follower list fetch failed", "err", err)
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// UnfollowNonFollowers trims accounts we follow on the platform that do
// not follow us back, regardless of how the follow originated. Accounts
// in our own follow book are left to UnfollowRun and its grace window.
func (r *Runner) UnfollowNonFollowers(ctx context.Context, target int) int {
	followerSet := r.loadFollowerSet(ctx)
	if followerSet == nil {
		return 0
	}
	following, err := r.client.GetFollowingIDs(ctx, r.self.ID)
	if err != nil {
		log.Warn("following list fetch failed", "err", err)
		return 0
	}

	performed := 0
	for _, id := range following {
		if performed >= target {
			break
		}
		if _, back := followerSet[id]; back {
			continue
		}
		if tracked, err := r.db.IsFollowing(ctx, id); err == nil && tracked {
			continue
		}
		if !r.allow(ctx, "unfollow") {
			break
		}

		if !r.dryRun() {
			if err := r.client.Unfollow(ctx, r.self.ID, id); err != nil {
				log.Warn("unfollow failed", "user_id", id, "err", err)
				continue
			}
		}
		r.consume(ctx, "unfollow")
		r.record(ctx, model.ActivityLog{
			Action: "unfollow", TargetID: id, TargetType: "user",
			TargetUserID: id, Success: true,
			Metadata: map[string]any{"reason": "non_follower"},
		})
		performed++
		log.Info("unfollowed non-follower", "user_id", id, "dry_run", r.dryRun())
		r.pace(ctx)
	}
	return performed
}

// FollowbackSweep marks every active follow that has reciprocated,
// regardless of age. Run from the CLI to reconcile the book on demand.
func (r *Runner) FollowbackSweep(ctx context.Context) int {
	followerSet := r.loadFollowerSet(ctx)
	if followerSet == nil {
		return 0
	}
	stale, err := r.db.StaleNonFollowbacks(ctx, r.now().UTC(), 10000)
	if err != nil {
		log.Error("follow book read failed", "err", err)
		return 0
	}
	marked := 0
	for _, u := range stale {
		if _, back := followerSet[u.UserID]; !back {
			continue
		}
		if err := r.db.MarkFollowedBack(ctx, u.UserID); err != nil {
			log.Error("followback mark failed", "user", u.Username, "err", err)
			continue
		}
		marked++
	}
	if marked > 0 {
		log.Info("followbacks detected", "count", marked)
	}
	return marked
}
