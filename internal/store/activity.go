package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"growthbot/internal/model"
)

// InsertActivity appends an entry to the activity log.
func (d *DB) InsertActivity(ctx context.Context, a model.ActivityLog) error {
	var meta *string
	if a.Metadata != nil {
		b, _ := json.Marshal(a.Metadata)
		s := string(b)
		meta = &s
	}
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO activity_log(action, target_id, target_type, target_user, target_user_id, ts, success, metadata)
		 VALUES(?,?,?,?,?,?,?,?)`,
		a.Action, a.TargetID, a.TargetType, a.TargetUser, a.TargetUserID, ts.Unix(), boolInt(a.Success), meta)
	return err
}

// LatestActivity returns the most recent successful entry for an action
// against a target, matched by user ID when present, else by username.
// Returns nil when no such entry exists.
func (d *DB) LatestActivity(ctx context.Context, action, targetUserID, targetUser string) (*model.ActivityLog, error) {
	var row *sql.Row
	switch {
	case targetUserID != "":
		row = d.sql.QueryRowContext(ctx,
			`SELECT action, target_id, target_type, target_user, target_user_id, ts, success, metadata
			 FROM activity_log WHERE action=? AND success=1 AND target_user_id=? ORDER BY ts DESC LIMIT 1`,
			action, targetUserID)
	case targetUser != "":
		row = d.sql.QueryRowContext(ctx,
			`SELECT action, target_id, target_type, target_user, target_user_id, ts, success, metadata
			 FROM activity_log WHERE action=? AND success=1 AND target_user=? ORDER BY ts DESC LIMIT 1`,
			action, targetUser)
	default:
		return nil, nil
	}
	return scanActivity(row)
}

// LatestActivityAny is LatestActivity across a set of action kinds.
func (d *DB) LatestActivityAny(ctx context.Context, actions []string, targetUserID, targetUser string) (*model.ActivityLog, error) {
	if len(actions) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(actions)), ",")
	args := make([]any, 0, len(actions)+1)
	for _, a := range actions {
		args = append(args, a)
	}
	q := `SELECT action, target_id, target_type, target_user, target_user_id, ts, success, metadata
	      FROM activity_log WHERE action IN (` + placeholders + `) AND success=1 AND `
	switch {
	case targetUserID != "":
		q += `target_user_id=?`
		args = append(args, targetUserID)
	case targetUser != "":
		q += `target_user=?`
		args = append(args, targetUser)
	default:
		return nil, nil
	}
	q += ` ORDER BY ts DESC LIMIT 1`
	return scanActivity(d.sql.QueryRowContext(ctx, q, args...))
}

// ActivitiesWithin returns successful entries in [start, end), oldest first.
func (d *DB) ActivitiesWithin(ctx context.Context, start, end time.Time) ([]model.ActivityLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT action, target_id, target_type, target_user, target_user_id, ts, success, metadata
		 FROM activity_log WHERE ts>=? AND ts<? AND success=1 ORDER BY ts`,
		start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ActivityLog
	for rows.Next() {
		a, err := scanActivityRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CountActivities returns the number of successful entries of an action in [start, end).
func (d *DB) CountActivities(ctx context.Context, action string, start, end time.Time) (int, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_log WHERE action=? AND success=1 AND ts>=? AND ts<?`,
		action, start.Unix(), end.Unix())
	var n int
	err := row.Scan(&n)
	return n, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanActivity(row *sql.Row) (*model.ActivityLog, error) {
	a, err := scanActivityRows(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func scanActivityRows(row rowScanner) (*model.ActivityLog, error) {
	var a model.ActivityLog
	var ts int64
	var success int
	var user, userID, meta sql.NullString
	if err := row.Scan(&a.Action, &a.TargetID, &a.TargetType, &user, &userID, &ts, &success, &meta); err != nil {
		return nil, err
	}
	a.TargetUser = user.String
	a.TargetUserID = userID.String
	a.Timestamp = time.Unix(ts, 0).UTC()
	a.Success = success != 0
	if meta.Valid && meta.String != "" {
		_ = json.Unmarshal([]byte(meta.String), &a.Metadata)
	}
	return &a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
