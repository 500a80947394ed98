package store

import (
	"context"
	"database/sql"
	"time"
)

// CounterDate formats a calendar day as the rate_limits key.
func CounterDate(t time.Time) string { return t.UTC().Format("2006-01-02") }

// IncrementCounter atomically bumps the counter for (action, date),
// creating it on first use.
func (d *DB) IncrementCounter(ctx context.Context, action, date string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO rate_limits(action, date, count, created_at) VALUES(?,?,1,?)
		 ON CONFLICT(action, date) DO UPDATE SET count = count + 1`,
		action, date, time.Now().UTC().Unix())
	return err
}

// GetCounter returns the counter for (action, date); 0 when absent.
func (d *DB) GetCounter(ctx context.Context, action, date string) (int, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT count FROM rate_limits WHERE action=? AND date=?`, action, date)
	var n int
	if err := row.Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// PurgeCountersBefore deletes counters older than the given date key.
func (d *DB) PurgeCountersBefore(ctx context.Context, date string) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM rate_limits WHERE date < ?`, date)
	return err
}
