// Package policy holds the interaction guardrails that keep the bot from
// repetitive, one-sided behavior: per-target cooldowns, the talk-back
// requirement for repeated replies, and the cross-action pile-on check.
// All decisions read the activity log; a denial is a normal negative
// decision, never an error.
package policy

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"growthbot/internal/store"
)

// Default cooldown windows, in hours.
const (
	EngageCooldownHours  = 72
	FollowCooldownHours  = 168
	RetweetCooldownHours = 120
	ReplyCooldownHours   = 24
	PileOnCooldownHours  = 72
)

// Policy answers cooldown questions from persisted history.
type Policy struct {
	db  *store.DB
	now func() time.Time
}

func New(db *store.DB) *Policy {
	return &Policy{db: db, now: time.Now}
}

// CanEngage reports whether the per-target cooldown for an action has
// elapsed. True when the target has never been engaged with this action.
func (p *Policy) CanEngage(ctx context.Context, action, targetUserID, targetUser string, cooldownHours int) bool {
	last, err := p.db.LatestActivity(ctx, action, targetUserID, targetUser)
	if err != nil {
		log.Error("cooldown lookup failed", "action", action, "err", err)
		return false
	}
	if last == nil {
		return true
	}
	until := last.Timestamp.Add(time.Duration(cooldownHours) * time.Hour)
	if p.now().UTC().Before(until) {
		log.Debug("cooldown active", "action", action, "target", targetUser, "until", until)
		return false
	}
	return true
}

// CanReply is stricter than CanEngage: after we reply to someone once, we
// only reply again if they have talked back since (an inbound mention
// newer than our reply), and even then a short cooldown applies.
func (p *Policy) CanReply(ctx context.Context, targetUserID, targetUser string) bool {
	lastReply, err := p.db.LatestActivity(ctx, "reply", targetUserID, targetUser)
	if err != nil {
		log.Error("reply lookup failed", "err", err)
		return false
	}
	if lastReply == nil {
		return true
	}
	if targetUserID == "" {
		return false
	}
	talkedBack, err := p.db.HasMentionSince(ctx, targetUserID, lastReply.Timestamp)
	if err != nil {
		log.Error("talk-back lookup failed", "err", err)
		return false
	}
	if !talkedBack {
		log.Debug("no talk-back since last reply", "target", targetUser)
		return false
	}
	return p.CanEngage(ctx, "reply", targetUserID, targetUser, ReplyCooldownHours)
}

// HasRecentEngagement reports whether any primary action hit this target
// inside the window. Used to prevent cross-action pile-on within a pass.
func (p *Policy) HasRecentEngagement(ctx context.Context, targetUserID, targetUser string, cooldownHours int) bool {
	if targetUserID == "" && targetUser == "" {
		return false
	}
	last, err := p.db.LatestActivityAny(ctx, []string{"reply", "like", "retweet", "follow"}, targetUserID, targetUser)
	if err != nil {
		log.Error("recent engagement lookup failed", "err", err)
		return false
	}
	if last == nil {
		return false
	}
	return p.now().UTC().Before(last.Timestamp.Add(time.Duration(cooldownHours) * time.Hour))
}
