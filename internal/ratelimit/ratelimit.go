// Package ratelimit enforces per-action daily ceilings backed by
// persisted counters. This is the bot's own budget, distinct from the
// HTTP pacing inside xclient.
package ratelimit

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"growthbot/internal/config"
	"growthbot/internal/store"
)

// StorageErrorPolicy decides what a counter read/write failure means for
// the gated action.
type StorageErrorPolicy int

const (
	// FailOpen permits the action when the counter store is unavailable.
	// Deliberate availability-over-accuracy tradeoff: the gated actions
	// are low-stakes and reversible, losing a day of strictness is
	// better than stalling the run.
	FailOpen StorageErrorPolicy = iota
	// FailClosed denies the action instead.
	FailClosed
)

// Limiter gates actions against daily counters in the store.
type Limiter struct {
	db      *store.DB
	dryRun  bool
	onError StorageErrorPolicy
	now     func() time.Time
}

func New(db *store.DB, dryRun bool) *Limiter {
	return &Limiter{db: db, dryRun: dryRun, onError: FailOpen, now: time.Now}
}

// SetStorageErrorPolicy overrides the default fail-open behavior.
func (l *Limiter) SetStorageErrorPolicy(p StorageErrorPolicy) { l.onError = p }

func (l *Limiter) failOpen() bool { return l.onError == FailOpen }

// Count returns today's persisted counter for the action.
func (l *Limiter) Count(ctx context.Context, action string) int {
	n, err := l.db.GetCounter(ctx, action, store.CounterDate(l.now()))
	if err != nil {
		log.Error("rate counter read failed", "action", action, "err", err)
		return 0
	}
	return n
}

// Check reports whether the action is still under its daily ceiling.
// Read-only. Dry-run mode always reports true without touching storage.
func (l *Limiter) Check(ctx context.Context, action string, ceiling int) bool {
	if l.dryRun {
		return true
	}
	n, err := l.db.GetCounter(ctx, action, store.CounterDate(l.now()))
	if err != nil {
		log.Error("rate counter read failed", "action", action, "err", err)
		return l.failOpen()
	}
	if n >= ceiling {
		log.Warn("daily ceiling reached", "action", action, "count", n, "ceiling", ceiling)
		return false
	}
	return true
}

// Increment bumps today's counter and reports whether the action is still
// within its ceiling. The increment that lands exactly on the ceiling is
// allowed through; only counts strictly above it report false. Dry-run
// mode returns true and never touches the counter.
func (l *Limiter) Increment(ctx context.Context, action string, ceiling int) bool {
	if l.dryRun {
		return true
	}
	date := store.CounterDate(l.now())
	if err := l.db.IncrementCounter(ctx, action, date); err != nil {
		log.Error("rate counter increment failed", "action", action, "err", err)
		return l.failOpen()
	}
	n, err := l.db.GetCounter(ctx, action, date)
	if err != nil {
		log.Error("rate counter read failed", "action", action, "err", err)
		return l.failOpen()
	}
	if n > ceiling {
		log.Warn("daily ceiling exceeded", "action", action, "count", n, "ceiling", ceiling)
		return false
	}
	log.Debug("rate counter ok", "action", action, "count", n, "ceiling", ceiling)
	return true
}

// SafeToOperate reports whether the action is under 90% of its ceiling,
// for callers that want headroom before starting a batch.
func (l *Limiter) SafeToOperate(ctx context.Context, action string, ceiling int) bool {
	if l.dryRun {
		return true
	}
	return float64(l.Count(ctx, action)) < float64(ceiling)*0.9
}

// ActionStatus summarizes one action's daily budget.
type ActionStatus struct {
	Count     int `json:"count"`
	Ceiling   int `json:"ceiling"`
	Remaining int `json:"remaining"`
}

// Status reports today's usage for every configured action kind.
func (l *Limiter) Status(ctx context.Context, limits config.LimitsConfig) map[string]ActionStatus {
	out := make(map[string]ActionStatus)
	for _, action := range []string{"like", "retweet", "follow", "unfollow", "post", "reply"} {
		ceiling := limits.Ceiling(action)
		n := l.Count(ctx, action)
		out[action] = ActionStatus{Count: n, Ceiling: ceiling, Remaining: max(0, ceiling-n)}
	}
	return out
}

// PurgeOld drops counters older than seven days.
func (l *Limiter) PurgeOld(ctx context.Context) {
	cutoff := store.CounterDate(l.now().AddDate(0, 0, -7))
	if err := l.db.PurgeCountersBefore(ctx, cutoff); err != nil {
		log.Error("rate counter purge failed", "err", err)
	}
}
