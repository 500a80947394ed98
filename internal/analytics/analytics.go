// Package analytics summarizes the activity log into the numbers a human
// checks between runs: action counts, followback rate, hourly spread, and
// which research queries produced engagements.
package analytics

import (
	"context"
	"sort"
	"time"

	"growthbot/internal/store"
)

type Reporter struct {
	db  *store.DB
	now func() time.Time
}

func New(db *store.DB) *Reporter {
	return &Reporter{db: db, now: time.Now}
}

// Summary is a windowed digest of bot activity.
type Summary struct {
	WindowDays   int            `json:"window_days"`
	Actions      map[string]int `json:"actions"`
	HourlySpread map[int]int    `json:"hourly_spread"`
	Followed     int            `json:"followed"`
	FollowedBack int            `json:"followed_back"`
	Followback   float64        `json:"followback_rate"`
	TopQueries   []QueryCount   `json:"top_queries"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Summarize digests the last windowDays of successful activity.
func (r *Reporter) Summarize(ctx context.Context, windowDays int) (Summary, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	end := r.now().UTC()
	start := end.AddDate(0, 0, -windowDays)

	s := Summary{
		WindowDays:   windowDays,
		Actions:      map[string]int{},
		HourlySpread: map[int]int{},
	}

	entries, err := r.db.ActivitiesWithin(ctx, start, end)
	if err != nil {
		return s, err
	}
	queryCounts := map[string]int{}
	for _, a := range entries {
		s.Actions[a.Action]++
		s.HourlySpread[a.Timestamp.Hour()]++
		if q, ok := a.Metadata["query"].(string); ok && q != "" {
			queryCounts[q]++
		}
	}
	s.TopQueries = topQueries(queryCounts, 5)

	followed, back, err := r.db.FollowbackStats(ctx, start)
	if err != nil {
		return s, err
	}
	s.Followed = followed
	s.FollowedBack = back
	if followed > 0 {
		s.Followback = float64(back) / float64(followed)
	}
	return s, nil
}

func topQueries(counts map[string]int, limit int) []QueryCount {
	out := make([]QueryCount, 0, len(counts))
	for q, n := range counts {
		out = append(out, QueryCount{Query: q, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
