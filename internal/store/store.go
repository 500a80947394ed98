// Package store persists the bot's history in SQLite: the append-only
// activity log, tracked tweets and followed users, inbound mentions,
// per-day rate counters, and discovered topics. Each write is an
// independent insert or upsert; no cross-table transactions are needed.
package store

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database behind the bot's logical collections.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS activity_log (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  action TEXT NOT NULL,
	  target_id TEXT NOT NULL,
	  target_type TEXT NOT NULL,
	  target_user TEXT,
	  target_user_id TEXT,
	  ts INTEGER NOT NULL,
	  success INTEGER NOT NULL,
	  metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_activity_ts ON activity_log(ts);
	CREATE INDEX IF NOT EXISTS idx_activity_action ON activity_log(action);
	CREATE INDEX IF NOT EXISTS idx_activity_target_user_id ON activity_log(target_user_id);

	CREATE TABLE IF NOT EXISTS tweets (
	  tweet_id TEXT PRIMARY KEY,
	  author_id TEXT,
	  author_username TEXT,
	  text TEXT,
	  likes INTEGER DEFAULT 0,
	  retweets INTEGER DEFAULT 0,
	  replies INTEGER DEFAULT 0,
	  quality_score REAL DEFAULT 0,
	  created_at INTEGER,
	  liked_at INTEGER,
	  retweeted_at INTEGER,
	  search_query TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_tweets_author ON tweets(author_id);

	CREATE TABLE IF NOT EXISTS users (
	  user_id TEXT PRIMARY KEY,
	  username TEXT,
	  followers_count INTEGER DEFAULT 0,
	  following_count INTEGER DEFAULT 0,
	  follow_score REAL DEFAULT 0,
	  followed_at INTEGER NOT NULL,
	  followed_back INTEGER DEFAULT 0,
	  unfollowed_at INTEGER,
	  unfollow_reason TEXT,
	  source_query TEXT,
	  source_tweet_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_users_followed_at ON users(followed_at);

	CREATE TABLE IF NOT EXISTS mentions (
	  mention_id TEXT PRIMARY KEY,
	  author_id TEXT,
	  text TEXT,
	  created_at INTEGER,
	  received_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_mentions_author ON mentions(author_id);

	CREATE TABLE IF NOT EXISTS rate_limits (
	  action TEXT NOT NULL,
	  date TEXT NOT NULL,
	  count INTEGER NOT NULL DEFAULT 0,
	  created_at INTEGER,
	  PRIMARY KEY (action, date)
	);

	CREATE TABLE IF NOT EXISTS topics (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  name TEXT NOT NULL,
	  source TEXT,
	  fetched_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_topics_fetched ON topics(fetched_at);
	`)
	return err
}
