package model

import "time"

// User represents a subset of X user fields used by the bot.
type User struct {
	ID             string
	Username       string
	Name           string
	Description    string
	CreatedAt      time.Time
	FollowersCount int
	FollowingCount int
	TweetCount     int
	Verified       bool
}

// AgeDays returns the account age in whole days at the given instant.
func (u User) AgeDays(now time.Time) int {
	if u.CreatedAt.IsZero() || u.CreatedAt.After(now) {
		return 0
	}
	return int(now.Sub(u.CreatedAt).Hours() / 24)
}

// Tweet represents a subset of X tweet fields used by the bot.
type Tweet struct {
	ID           string
	AuthorID     string
	Text         string
	CreatedAt    time.Time
	LikeCount    int
	ReplyCount   int
	RetweetCount int
	Language     string

	// Author is populated from the search response's user expansion.
	Author User
}

// Engagement is the weighted interaction count used by several scorers.
func (t Tweet) Engagement() int {
	return t.LikeCount + 2*t.RetweetCount + 2*t.ReplyCount
}

// Candidate is a tweet decorated with transient scores for one run.
// Scores live in memory only; the tweet is persisted separately if acted on.
type Candidate struct {
	Tweet
	AuthenticityScore float64
	CandidateScore    float64
	Bucket            string
	ResearchQuery     string
}

// ActivityLog is an append-only record of an action the bot performed.
type ActivityLog struct {
	ID           int64
	Action       string // like, retweet, follow, unfollow, reply, post
	TargetID     string
	TargetType   string // tweet, user
	TargetUser   string
	TargetUserID string
	Timestamp    time.Time
	Success      bool
	Metadata     map[string]any
}

// FollowedUser tracks an account we followed and whether it reciprocated.
type FollowedUser struct {
	UserID         string
	Username       string
	FollowersCount int
	FollowingCount int
	FollowScore    float64
	FollowedAt     time.Time
	FollowedBack   bool
	UnfollowedAt   *time.Time
	SourceQuery    string
	SourceTweetID  string
}

// Mention is an inbound mention/reply we received, used for talk-back checks.
type Mention struct {
	MentionID  string
	AuthorID   string
	Text       string
	CreatedAt  time.Time
	ReceivedAt time.Time
}

// TrackedTweet is a content item we acted on, persisted for analytics.
type TrackedTweet struct {
	TweetID        string
	AuthorID       string
	AuthorUsername string
	Text           string
	Likes          int
	Retweets       int
	Replies        int
	QualityScore   float64
	CreatedAt      time.Time
	LikedAt        *time.Time
	RetweetedAt    *time.Time
	SearchQuery    string
}
