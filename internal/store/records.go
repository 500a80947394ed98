package store

import (
	"context"
	"database/sql"
	"time"

	"growthbot/internal/model"
)

// InsertFollowedUser records a follow. Re-following a known user refreshes
// the record instead of failing the primary key.
func (d *DB) InsertFollowedUser(ctx context.Context, u model.FollowedUser) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO users(user_id, username, followers_count, following_count, follow_score, followed_at, followed_back, source_query, source_tweet_id)
		 VALUES(?,?,?,?,?,?,0,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   username=excluded.username,
		   followers_count=excluded.followers_count,
		   following_count=excluded.following_count,
		   follow_score=excluded.follow_score,
		   followed_at=excluded.followed_at,
		   followed_back=0,
		   unfollowed_at=NULL,
		   unfollow_reason=NULL,
		   source_query=excluded.source_query,
		   source_tweet_id=excluded.source_tweet_id`,
		u.UserID, u.Username, u.FollowersCount, u.FollowingCount, u.FollowScore,
		u.FollowedAt.Unix(), u.SourceQuery, u.SourceTweetID)
	return err
}

// IsFollowing reports whether user_id has an active (not unfollowed) record.
func (d *DB) IsFollowing(ctx context.Context, userID string) (bool, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE user_id=? AND unfollowed_at IS NULL`, userID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkFollowedBack flags a followed user as having reciprocated.
func (d *DB) MarkFollowedBack(ctx context.Context, userID string) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE users SET followed_back=1 WHERE user_id=?`, userID)
	return err
}

// MarkUnfollowed stamps the unfollow time and reason; the record is kept.
func (d *DB) MarkUnfollowed(ctx context.Context, userID, reason string, at time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE users SET unfollowed_at=?, unfollow_reason=? WHERE user_id=?`,
		at.Unix(), reason, userID)
	return err
}

// StaleNonFollowbacks returns users followed before cutoff who never
// followed back and are still followed.
func (d *DB) StaleNonFollowbacks(ctx context.Context, cutoff time.Time, limit int) ([]model.FollowedUser, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT user_id, username, followers_count, following_count, follow_score, followed_at
		 FROM users
		 WHERE followed_at < ? AND followed_back=0 AND unfollowed_at IS NULL
		 ORDER BY followed_at LIMIT ?`,
		cutoff.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FollowedUser
	for rows.Next() {
		var u model.FollowedUser
		var followedAt int64
		var username sql.NullString
		if err := rows.Scan(&u.UserID, &username, &u.FollowersCount, &u.FollowingCount, &u.FollowScore, &followedAt); err != nil {
			return nil, err
		}
		u.Username = username.String
		u.FollowedAt = time.Unix(followedAt, 0).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

// FollowbackStats returns (followed, followedBack) counts since a cutoff.
func (d *DB) FollowbackStats(ctx context.Context, since time.Time) (int, int, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(followed_back),0) FROM users WHERE followed_at >= ?`,
		since.Unix())
	var total, back int
	err := row.Scan(&total, &back)
	return total, back, err
}

// UpsertTrackedTweet inserts or refreshes a tweet we acted on.
func (d *DB) UpsertTrackedTweet(ctx context.Context, t model.TrackedTweet) error {
	var likedAt, retweetedAt, createdAt any
	if t.LikedAt != nil {
		likedAt = t.LikedAt.Unix()
	}
	if t.RetweetedAt != nil {
		retweetedAt = t.RetweetedAt.Unix()
	}
	if !t.CreatedAt.IsZero() {
		createdAt = t.CreatedAt.Unix()
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO tweets(tweet_id, author_id, author_username, text, likes, retweets, replies, quality_score, created_at, liked_at, retweeted_at, search_query)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(tweet_id) DO UPDATE SET
		   likes=excluded.likes,
		   retweets=excluded.retweets,
		   replies=excluded.replies,
		   quality_score=excluded.quality_score,
		   liked_at=COALESCE(excluded.liked_at, tweets.liked_at),
		   retweeted_at=COALESCE(excluded.retweeted_at, tweets.retweeted_at),
		   search_query=excluded.search_query`,
		t.TweetID, t.AuthorID, t.AuthorUsername, t.Text, t.Likes, t.Retweets, t.Replies,
		t.QualityScore, createdAt, likedAt, retweetedAt, t.SearchQuery)
	return err
}

// AlreadyLiked reports whether we already recorded a like for this tweet.
func (d *DB) AlreadyLiked(ctx context.Context, tweetID string) (bool, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT 1 FROM tweets WHERE tweet_id=? AND liked_at IS NOT NULL`, tweetID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RecentlyLikedAuthor reports whether any tweet by the author was liked
// at or after since.
func (d *DB) RecentlyLikedAuthor(ctx context.Context, authorID string, since time.Time) (bool, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT 1 FROM tweets WHERE author_id=? AND liked_at IS NOT NULL AND liked_at >= ? LIMIT 1`,
		authorID, since.Unix())
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpsertMention stores an inbound mention once; replays are ignored.
func (d *DB) UpsertMention(ctx context.Context, m model.Mention) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO mentions(mention_id, author_id, text, created_at, received_at)
		 VALUES(?,?,?,?,?)
		 ON CONFLICT(mention_id) DO NOTHING`,
		m.MentionID, m.AuthorID, m.Text, m.CreatedAt.Unix(), m.ReceivedAt.Unix())
	return err
}

// HasMentionSince reports whether the author mentioned us after the given
// time, judged by either the tweet's own timestamp or our receipt time.
func (d *DB) HasMentionSince(ctx context.Context, authorID string, since time.Time) (bool, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT 1 FROM mentions WHERE author_id=? AND (created_at > ? OR received_at > ?) LIMIT 1`,
		authorID, since.Unix(), since.Unix())
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// InsertTopic appends a discovered topic to the history.
func (d *DB) InsertTopic(ctx context.Context, name, source string, at time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO topics(name, source, fetched_at) VALUES(?,?,?)`,
		name, source, at.Unix())
	return err
}

// RecentTopics returns the most recently fetched topic names, newest first.
func (d *DB) RecentTopics(ctx context.Context, limit int) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT name FROM topics ORDER BY fetched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
