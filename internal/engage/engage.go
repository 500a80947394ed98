// Package engage performs the bot's outward actions. Each run method
// walks a candidate pool through the full gate chain (session dedup,
// scoring floors, cooldowns, daily ceilings) and performs at most the
// requested number of actions. Per-target denials and API failures are
// logged and skipped, never propagated.
package engage

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"growthbot/internal/config"
	"growthbot/internal/llm"
	"growthbot/internal/metrics"
	"growthbot/internal/model"
	"growthbot/internal/policy"
	"growthbot/internal/ratelimit"
	"growthbot/internal/selector"
	"growthbot/internal/store"
	"growthbot/internal/xclient"
)

// pileOnLikeHours is the author-level like cooldown, slightly wider than
// the generic pile-on window so likes never cluster on one account.
const pileOnLikeHours = 96

// retweetEngagementFloor is the minimum weighted engagement for a tweet
// to be worth amplifying.
const retweetEngagementFloor = 25

// Runner holds everything one engagement pass needs. Build one per run
// with a fresh Session.
type Runner struct {
	cfg     config.Config
	client  xclient.Client
	db      *store.DB
	limiter *ratelimit.Limiter
	policy  *policy.Policy
	drafter *llm.Drafter
	session *selector.Session

	// self is the authenticated account, resolved once at startup.
	self model.User

	rng *rand.Rand
	now func() time.Time
}

func NewRunner(cfg config.Config, client xclient.Client, db *store.DB, limiter *ratelimit.Limiter, pol *policy.Policy, drafter *llm.Drafter, session *selector.Session, self model.User) *Runner {
	return &Runner{
		cfg:     cfg,
		client:  client,
		db:      db,
		limiter: limiter,
		policy:  pol,
		drafter: drafter,
		session: session,
		self:    self,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

func (r *Runner) dryRun() bool { return r.cfg.Behavior.DryRun }

// allow is the read-only daily-ceiling gate for one action attempt. It
// claims nothing; consume takes the slot once the action has succeeded,
// so a failed call or dead-end draft never burns ceiling.
func (r *Runner) allow(ctx context.Context, action string) bool {
	metrics.ActionAttempted(action)
	if !r.limiter.Check(ctx, action, r.cfg.Limits.Ceiling(action)) {
		metrics.ActionDenied(action, "daily_ceiling")
		return false
	}
	return true
}

// consume claims the daily slot for an action that just succeeded, keeping
// the counter equal to the successful activity-log entries.
func (r *Runner) consume(ctx context.Context, action string) {
	if !r.limiter.Increment(ctx, action, r.cfg.Limits.Ceiling(action)) {
		log.Warn("counter claim refused after action", "action", action)
	}
}

// record appends the activity-log entry for a performed action. Log-write
// failures are reported but do not undo the action.
func (r *Runner) record(ctx context.Context, a model.ActivityLog) {
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	a.Metadata["run_id"] = r.session.RunID
	if r.dryRun() {
		a.Metadata["dry_run"] = true
	}
	a.Timestamp = r.now().UTC()
	if err := r.db.InsertActivity(ctx, a); err != nil {
		log.Error("activity log write failed", "action", a.Action, "target", a.TargetID, "err", err)
		return
	}
	if a.Success {
		metrics.ActionPerformed(a.Action)
	}
}

// pace sleeps a randomized human-ish delay between consecutive actions.
func (r *Runner) pace(ctx context.Context) {
	min := r.cfg.Behavior.MinDelaySeconds
	max := r.cfg.Behavior.MaxDelaySeconds
	if max <= min {
		max = min + 1
	}
	d := time.Duration(min+r.rng.Intn(max-min)) * time.Second
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
