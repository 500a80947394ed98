package policy

import (
	"context"
	"testing"
	"time"

	"growthbot/internal/model"
	"growthbot/internal/store"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testPolicy(t *testing.T) (*Policy, *store.DB) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	p := New(db)
	p.now = func() time.Time { return now }
	return p, db
}

func logAction(t *testing.T, db *store.DB, action, userID string, at time.Time) {
	t.Helper()
	err := db.InsertActivity(context.Background(), model.ActivityLog{
		Action: action, TargetID: "t1", TargetType: "tweet",
		TargetUser: "alice", TargetUserID: userID,
		Timestamp: at, Success: true,
	})
	if err != nil {
		t.Fatalf("insert activity: %v", err)
	}
}

func TestCanEngageFreshTarget(t *testing.T) {
	p, _ := testPolicy(t)
	if !p.CanEngage(context.Background(), "like", "u1", "alice", EngageCooldownHours) {
		t.Fatal("never-engaged target must be allowed")
	}
}

func TestCanEngageCooldown(t *testing.T) {
	p, db := testPolicy(t)
	ctx := context.Background()

	logAction(t, db, "like", "u1", now.Add(-10*time.Hour))
	if p.CanEngage(ctx, "like", "u1", "alice", EngageCooldownHours) {
		t.Fatal("10h ago is inside the 72h cooldown")
	}

	logAction(t, db, "like", "u2", now.Add(-100*time.Hour))
	if !p.CanEngage(ctx, "like", "u2", "bob", EngageCooldownHours) {
		t.Fatal("100h ago is past the 72h cooldown")
	}
}

func TestCanEngageFailedActionsIgnored(t *testing.T) {
	p, db := testPolicy(t)
	ctx := context.Background()
	err := db.InsertActivity(ctx, model.ActivityLog{
		Action: "like", TargetID: "t1", TargetType: "tweet",
		TargetUserID: "u1", Timestamp: now.Add(-time.Hour), Success: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !p.CanEngage(ctx, "like", "u1", "alice", EngageCooldownHours) {
		t.Fatal("failed attempts must not start a cooldown")
	}
}

func TestCanReplyFirstTime(t *testing.T) {
	p, _ := testPolicy(t)
	if !p.CanReply(context.Background(), "u1", "alice") {
		t.Fatal("first reply must be allowed")
	}
}

func TestCanReplyRequiresTalkBack(t *testing.T) {
	p, db := testPolicy(t)
	ctx := context.Background()

	logAction(t, db, "reply", "u1", now.Add(-30*time.Hour))
	if p.CanReply(ctx, "u1", "alice") {
		t.Fatal("no inbound mention since our reply, must deny")
	}

	// They talked back after our reply: allowed once the 24h cooldown passed.
	err := db.UpsertMention(ctx, model.Mention{
		MentionID: "m1", AuthorID: "u1", Text: "thanks, what about retries?",
		CreatedAt: now.Add(-5 * time.Hour), ReceivedAt: now.Add(-5 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !p.CanReply(ctx, "u1", "alice") {
		t.Fatal("talk-back present and cooldown elapsed, must allow")
	}
}

func TestCanReplyTalkBackInsideCooldown(t *testing.T) {
	p, db := testPolicy(t)
	ctx := context.Background()

	logAction(t, db, "reply", "u1", now.Add(-10*time.Hour))
	err := db.UpsertMention(ctx, model.Mention{
		MentionID: "m1", AuthorID: "u1", Text: "interesting",
		CreatedAt: now.Add(-2 * time.Hour), ReceivedAt: now.Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.CanReply(ctx, "u1", "alice") {
		t.Fatal("talk-back present but reply cooldown still active")
	}
}

func TestCanReplyNoUserIDAfterPriorReply(t *testing.T) {
	p, db := testPolicy(t)
	ctx := context.Background()
	err := db.InsertActivity(ctx, model.ActivityLog{
		Action: "reply", TargetID: "t1", TargetType: "tweet",
		TargetUser: "alice", Timestamp: now.Add(-100 * time.Hour), Success: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.CanReply(ctx, "", "alice") {
		t.Fatal("talk-back cannot be verified without a user ID, must deny")
	}
}

func TestHasRecentEngagement(t *testing.T) {
	p, db := testPolicy(t)
	ctx := context.Background()

	if p.HasRecentEngagement(ctx, "u1", "alice", PileOnCooldownHours) {
		t.Fatal("fresh target reported as engaged")
	}
	logAction(t, db, "retweet", "u1", now.Add(-10*time.Hour))
	if !p.HasRecentEngagement(ctx, "u1", "alice", PileOnCooldownHours) {
		t.Fatal("recent retweet must count as engagement")
	}
	if p.HasRecentEngagement(ctx, "", "", PileOnCooldownHours) {
		t.Fatal("anonymous target can never match")
	}
}
