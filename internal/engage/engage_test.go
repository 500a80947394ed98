package engage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"growthbot/internal/config"
	"growthbot/internal/llm"
	"growthbot/internal/model"
	"growthbot/internal/policy"
	"growthbot/internal/ratelimit"
	"growthbot/internal/selector"
	"growthbot/internal/store"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClient struct {
	likes     []string
	retweets  []string
	follows   []string
	unfollows []string
	replies   []string
	posts     []string
	mentions  []model.Tweet
	followers []string
	following []string

	likeErr error
}

func (f *fakeClient) SearchRecent(context.Context, string, int) ([]model.Tweet, error) {
	return nil, nil
}
func (f *fakeClient) GetUserByUsername(context.Context, string) (model.User, error) {
	return model.User{}, nil
}
func (f *fakeClient) GetMentions(context.Context, string, int) ([]model.Tweet, error) {
	return f.mentions, nil
}
func (f *fakeClient) GetFollowerIDs(context.Context, string) ([]string, error) {
	return f.followers, nil
}
func (f *fakeClient) GetFollowingIDs(context.Context, string) ([]string, error) {
	return f.following, nil
}
func (f *fakeClient) PostTweet(_ context.Context, text string) (string, error) {
	f.posts = append(f.posts, text)
	return "t-posted", nil
}
func (f *fakeClient) Reply(_ context.Context, parentID, _ string) (string, error) {
	f.replies = append(f.replies, parentID)
	return "t-reply", nil
}
func (f *fakeClient) Like(_ context.Context, _, tweetID string) error {
	if f.likeErr != nil {
		return f.likeErr
	}
	f.likes = append(f.likes, tweetID)
	return nil
}
func (f *fakeClient) Retweet(_ context.Context, _, tweetID string) error {
	f.retweets = append(f.retweets, tweetID)
	return nil
}
func (f *fakeClient) Follow(_ context.Context, _, targetID string) error {
	f.follows = append(f.follows, targetID)
	return nil
}
func (f *fakeClient) Unfollow(_ context.Context, _, targetID string) error {
	f.unfollows = append(f.unfollows, targetID)
	return nil
}

type stubGen struct{ text string }

func (s stubGen) Generate(context.Context, string, string, int) (string, error) {
	return s.text, nil
}

const goodReply = "One practical move: run a small pilot first and measure the outcome before scaling. Which part would you automate first?"

func testRunner(t *testing.T, dryRun bool) (*Runner, *fakeClient, *store.DB) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Default()
	cfg.Account.Username = "growthbot_acct"
	cfg.Behavior.MinDelaySeconds = 0
	cfg.Behavior.MaxDelaySeconds = 0
	cfg.Behavior.DryRun = dryRun

	client := &fakeClient{}
	drafter := llm.NewDrafter(stubGen{text: goodReply}, 2, cfg.Scoring.DraftFloor)
	r := NewRunner(cfg, client, db, ratelimit.New(db, dryRun), policy.New(db), drafter,
		selector.NewSession(), model.User{ID: "self-id", Username: "growthbot_acct"})
	r.now = func() time.Time { return now }
	return r, client, db
}

func candidate(id string) model.Candidate {
	return model.Candidate{
		Tweet: model.Tweet{
			ID:        "t-" + id,
			AuthorID:  "u-" + id,
			Text:      "a thoughtful take on incident response and the tradeoffs between paging early and paging accurately",
			CreatedAt: now.Add(-2 * time.Hour),
			LikeCount: 30,
			Author: model.User{
				ID:             "u-" + id,
				Username:       "author_" + id,
				Description:    "site reliability, writing about production operations",
				CreatedAt:      now.AddDate(0, 0, -400),
				FollowersCount: 2000,
				FollowingCount: 1000,
				TweetCount:     800,
			},
		},
		CandidateScore: 70,
		ResearchQuery:  "incident response",
	}
}

func TestLikeRun(t *testing.T) {
	r, client, db := testRunner(t, false)
	ctx := context.Background()

	n := r.LikeRun(ctx, []model.Candidate{candidate("a"), candidate("b")}, 1)
	if n != 1 {
		t.Fatalf("performed %d, want 1", n)
	}
	if len(client.likes) != 1 || client.likes[0] != "t-a" {
		t.Fatalf("likes = %v", client.likes)
	}
	if liked, _ := db.AlreadyLiked(ctx, "t-a"); !liked {
		t.Fatal("like not tracked")
	}
	last, err := db.LatestActivity(ctx, "like", "u-a", "")
	if err != nil || last == nil {
		t.Fatalf("activity missing: %v", err)
	}
	if last.Metadata["query"] != "incident response" {
		t.Fatalf("metadata = %v", last.Metadata)
	}
	if last.Metadata["run_id"] == "" {
		t.Fatal("run id missing from metadata")
	}
}

func TestLikeRunSkipsAlreadyLiked(t *testing.T) {
	r, client, _ := testRunner(t, false)
	ctx := context.Background()
	c := candidate("a")

	if n := r.LikeRun(ctx, []model.Candidate{c}, 1); n != 1 {
		t.Fatalf("first pass performed %d", n)
	}
	// Fresh session, same tweet: the persistent book must block the repeat.
	r.session = selector.NewSession()
	if n := r.LikeRun(ctx, []model.Candidate{c}, 1); n != 0 {
		t.Fatal("already-liked tweet liked again")
	}
	if len(client.likes) != 1 {
		t.Fatalf("likes = %v", client.likes)
	}
}

func TestLikeRunAuthorPileOn(t *testing.T) {
	r, client, _ := testRunner(t, false)
	ctx := context.Background()
	a := candidate("a")
	b := candidate("a")
	b.ID = "t-other"
	b.Text = "another strong post from the same author about rollout gates and deployment safety nets"

	if n := r.LikeRun(ctx, []model.Candidate{a}, 1); n != 1 {
		t.Fatalf("first like failed: %d", n)
	}
	r.session = selector.NewSession()
	if n := r.LikeRun(ctx, []model.Candidate{b}, 1); n != 0 {
		t.Fatal("second like on the same author within the window")
	}
	if len(client.likes) != 1 {
		t.Fatalf("likes = %v", client.likes)
	}
}

func TestLikeRunBelowFloorSkipped(t *testing.T) {
	r, client, _ := testRunner(t, false)
	c := candidate("a")
	c.CandidateScore = 10
	if n := r.LikeRun(context.Background(), []model.Candidate{c}, 1); n != 0 {
		t.Fatal("below-floor candidate liked")
	}
	if len(client.likes) != 0 {
		t.Fatalf("likes = %v", client.likes)
	}
}

func TestLikeRunAPIFailureRecorded(t *testing.T) {
	r, client, db := testRunner(t, false)
	client.likeErr = errors.New("forbidden")
	ctx := context.Background()

	if n := r.LikeRun(ctx, []model.Candidate{candidate("a")}, 1); n != 0 {
		t.Fatal("failed like counted as performed")
	}
	// Failures are logged but never start a cooldown.
	if !r.policy.CanEngage(ctx, "like", "u-a", "author_a", policy.EngageCooldownHours) {
		t.Fatal("failed like started a cooldown")
	}
	if liked, _ := db.AlreadyLiked(ctx, "t-a"); liked {
		t.Fatal("failed like tracked as liked")
	}
}

func TestLikeRunFailureLeavesCeilingSlot(t *testing.T) {
	r, client, db := testRunner(t, false)
	r.cfg.Limits.LikesPerDay = 1
	client.likeErr = errors.New("forbidden")
	ctx := context.Background()

	if n := r.LikeRun(ctx, []model.Candidate{candidate("a")}, 1); n != 0 {
		t.Fatal("failed like counted as performed")
	}
	if n, _ := db.GetCounter(ctx, "like", store.CounterDate(now)); n != 0 {
		t.Fatalf("failed like consumed the counter: %d", n)
	}

	// The sole daily slot must still be open for the next attempt.
	client.likeErr = nil
	if n := r.LikeRun(ctx, []model.Candidate{candidate("b")}, 1); n != 1 {
		t.Fatal("slot unavailable after a failed attempt")
	}
	if n, _ := db.GetCounter(ctx, "like", store.CounterDate(now)); n != 1 {
		t.Fatalf("counter = %d, want 1", n)
	}
}

func TestLikeRunDryRun(t *testing.T) {
	r, client, db := testRunner(t, true)
	ctx := context.Background()

	if n := r.LikeRun(ctx, []model.Candidate{candidate("a")}, 1); n != 1 {
		t.Fatal("dry-run like not simulated")
	}
	if len(client.likes) != 0 {
		t.Fatal("dry run hit the API")
	}
	if n, _ := db.GetCounter(ctx, "like", store.CounterDate(now)); n != 0 {
		t.Fatalf("dry run touched the counter: %d", n)
	}
	last, _ := db.LatestActivity(ctx, "like", "u-a", "")
	if last == nil || last.Metadata["dry_run"] != true {
		t.Fatalf("dry-run activity = %+v", last)
	}
}

func TestReplyRun(t *testing.T) {
	r, client, db := testRunner(t, false)
	ctx := context.Background()

	n := r.ReplyRun(ctx, []model.Candidate{candidate("a")}, 1)
	if n != 1 {
		t.Fatalf("performed %d", n)
	}
	if len(client.replies) != 1 || client.replies[0] != "t-a" {
		t.Fatalf("replies = %v", client.replies)
	}
	last, _ := db.LatestActivity(ctx, "reply", "u-a", "")
	if last == nil {
		t.Fatal("reply activity missing")
	}
	if last.Metadata["text"] != goodReply {
		t.Fatalf("metadata text = %v", last.Metadata["text"])
	}
	if n, _ := db.GetCounter(ctx, "reply", store.CounterDate(now)); n != 1 {
		t.Fatalf("counter = %d, want 1", n)
	}
}

func TestReplyRunSkipsLinkTweets(t *testing.T) {
	r, client, _ := testRunner(t, false)
	c := candidate("a")
	c.Text = "must read https://example.com/article about incident response and more"
	if n := r.ReplyRun(context.Background(), []model.Candidate{c}, 1); n != 0 {
		t.Fatal("replied to a link dump")
	}
	if len(client.replies) != 0 {
		t.Fatalf("replies = %v", client.replies)
	}
}

func TestReplyRunSkipsLowValueTargets(t *testing.T) {
	r, client, _ := testRunner(t, false)
	c := candidate("a")
	c.Author.Username = "crypto_news_updates"
	if n := r.ReplyRun(context.Background(), []model.Candidate{c}, 1); n != 0 {
		t.Fatal("replied to an aggregator account")
	}
	if len(client.replies) != 0 {
		t.Fatalf("replies = %v", client.replies)
	}
}

func TestReplyRunRespectsTalkBackRule(t *testing.T) {
	r, client, _ := testRunner(t, false)
	ctx := context.Background()
	c := candidate("a")

	if n := r.ReplyRun(ctx, []model.Candidate{c}, 1); n != 1 {
		t.Fatal("first reply denied")
	}
	r.session = selector.NewSession()
	c.ID = "t-newer"
	if n := r.ReplyRun(ctx, []model.Candidate{c}, 1); n != 0 {
		t.Fatal("second reply without talk-back")
	}
	if len(client.replies) != 1 {
		t.Fatalf("replies = %v", client.replies)
	}
}

func TestRetweetRun(t *testing.T) {
	r, client, _ := testRunner(t, false)
	ctx := context.Background()

	quiet := candidate("quiet")
	quiet.LikeCount = 2 // engagement below the amplification floor
	loud := candidate("loud")

	n := r.RetweetRun(ctx, []model.Candidate{quiet, loud}, 2)
	if n != 1 {
		t.Fatalf("performed %d, want 1", n)
	}
	if len(client.retweets) != 1 || client.retweets[0] != "t-loud" {
		t.Fatalf("retweets = %v", client.retweets)
	}
}

func TestFollowRun(t *testing.T) {
	r, client, db := testRunner(t, false)
	ctx := context.Background()

	weak := candidate("weak")
	weak.Author.FollowersCount = 20
	weak.Author.FollowingCount = 4000 // poor ratio, low worthiness
	weak.LikeCount = 0
	strong := candidate("strong")
	strong.Author.Verified = true

	n := r.FollowRun(ctx, []model.Candidate{weak, strong}, 1)
	if n != 1 {
		t.Fatalf("performed %d", n)
	}
	if len(client.follows) != 1 || client.follows[0] != "u-strong" {
		t.Fatalf("follows = %v", client.follows)
	}
	if following, _ := db.IsFollowing(ctx, "u-strong"); !following {
		t.Fatal("follow not persisted")
	}

	// Known follows are skipped on the next pass.
	r.session = selector.NewSession()
	if n := r.FollowRun(ctx, []model.Candidate{strong}, 1); n != 0 {
		t.Fatal("refollowed a known user")
	}
}

func TestFollowRunSkipsLikelyBots(t *testing.T) {
	r, client, _ := testRunner(t, false)
	ctx := context.Background()

	bot := candidate("bot")
	bot.Author.Verified = true
	bot.Author.Description = "follow"
	bot.Author.FollowersCount = 50
	bot.Author.FollowingCount = 6000

	human := candidate("human")

	if n := r.FollowRun(ctx, []model.Candidate{bot, human}, 2); n != 1 {
		t.Fatalf("performed %d, want 1", n)
	}
	if len(client.follows) != 1 || client.follows[0] != "u-human" {
		t.Fatalf("follows = %v", client.follows)
	}
}

func TestUnfollowNonFollowers(t *testing.T) {
	r, client, db := testRunner(t, false)
	ctx := context.Background()

	client.followers = []string{"u-mutual"}
	client.following = []string{"u-mutual", "u-stranger", "u-tracked"}
	if err := db.InsertFollowedUser(ctx, model.FollowedUser{
		UserID: "u-tracked", Username: "tracked", FollowedAt: now.AddDate(0, 0, -5),
	}); err != nil {
		t.Fatal(err)
	}

	n := r.UnfollowNonFollowers(ctx, 5)
	if n != 1 {
		t.Fatalf("performed %d, want 1", n)
	}
	// Mutuals are kept; accounts in the follow book wait for their grace window.
	if len(client.unfollows) != 1 || client.unfollows[0] != "u-stranger" {
		t.Fatalf("unfollows = %v", client.unfollows)
	}
}

func TestUnfollowRunReapsStale(t *testing.T) {
	r, client, db := testRunner(t, false)
	ctx := context.Background()

	stale := model.FollowedUser{UserID: "u-old", Username: "old", FollowedAt: now.AddDate(0, 0, -45)}
	fresh := model.FollowedUser{UserID: "u-new", Username: "new", FollowedAt: now.AddDate(0, 0, -5)}
	reciprocated := model.FollowedUser{UserID: "u-back", Username: "back", FollowedAt: now.AddDate(0, 0, -45)}
	for _, u := range []model.FollowedUser{stale, fresh, reciprocated} {
		if err := db.InsertFollowedUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	client.followers = []string{"u-back"}

	n := r.UnfollowRun(ctx, 5)
	if n != 1 {
		t.Fatalf("performed %d, want 1", n)
	}
	if len(client.unfollows) != 1 || client.unfollows[0] != "u-old" {
		t.Fatalf("unfollows = %v", client.unfollows)
	}
	if following, _ := db.IsFollowing(ctx, "u-old"); following {
		t.Fatal("stale user still marked followed")
	}
	if following, _ := db.IsFollowing(ctx, "u-new"); !following {
		t.Fatal("fresh follow reaped early")
	}
	stale2, _ := db.StaleNonFollowbacks(ctx, now, 10)
	for _, u := range stale2 {
		if u.UserID == "u-back" {
			t.Fatal("reciprocated follow not marked")
		}
	}
}

func TestMentionsRun(t *testing.T) {
	r, client, db := testRunner(t, false)
	ctx := context.Background()
	client.mentions = []model.Tweet{
		{ID: "m1", AuthorID: "u1", Text: "hey, what about retries?", CreatedAt: now.Add(-time.Hour)},
		{ID: "", AuthorID: "u2", Text: "dropped"},
	}

	if n := r.MentionsRun(ctx); n != 1 {
		t.Fatalf("stored %d, want 1", n)
	}
	if ok, _ := db.HasMentionSince(ctx, "u1", now.Add(-2*time.Hour)); !ok {
		t.Fatal("mention not queryable")
	}
}

func TestPostRun(t *testing.T) {
	r, client, db := testRunner(t, false)
	r.drafter = llm.NewDrafter(stubGen{
		text: "How to cut flaky tests: start with a checklist of the top three failure causes, then measure reruns weekly for one sprint.",
	}, 2, r.cfg.Scoring.DraftFloor)
	ctx := context.Background()

	if !r.PostRun(ctx, "testing", true) {
		t.Fatal("post not published")
	}
	if len(client.posts) != 1 {
		t.Fatalf("posts = %v", client.posts)
	}
	n, err := db.CountActivities(ctx, "post", now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("post activity count = %d, %v", n, err)
	}
}

func TestPostRunOffPeak(t *testing.T) {
	r, client, _ := testRunner(t, false)
	r.cfg.Behavior.PeakPostingHours = []int{3} // now is 12:00
	if r.PostRun(context.Background(), "testing", false) {
		t.Fatal("posted off-peak without force")
	}
	if len(client.posts) != 0 {
		t.Fatalf("posts = %v", client.posts)
	}
}

func TestDailyCeilingStopsRun(t *testing.T) {
	r, client, _ := testRunner(t, false)
	r.cfg.Limits.LikesPerDay = 1
	ctx := context.Background()

	var pool []model.Candidate
	for i := 0; i < 3; i++ {
		pool = append(pool, candidate(fmt.Sprintf("c%d", i)))
	}
	if n := r.LikeRun(ctx, pool, 3); n != 1 {
		t.Fatalf("performed %d with a ceiling of 1", n)
	}
	if len(client.likes) != 1 {
		t.Fatalf("likes = %v", client.likes)
	}
}
