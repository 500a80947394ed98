package score

import (
	"time"

	"growthbot/internal/model"
)

// FollowWorthiness scores how worthwhile an account is to follow (0-100).
// Unlike CandidateValue this scores the profile, not the text: the sweet
// spot is an established mid-size account with a balanced follow ratio,
// because those are the accounts most likely to follow back.
func FollowWorthiness(u model.User, t model.Tweet, now time.Time) float64 {
	if u.ID == "" && u.Username == "" {
		return 0
	}

	score := 0.0

	if u.Verified {
		score += 25
	}

	switch followers := u.FollowersCount; {
	case followers >= 1000 && followers <= 100000:
		score += 25
	case followers >= 100 && followers < 1000:
		score += 20
	case followers > 100000:
		score += 15 // very large accounts rarely follow back
	case followers > 50:
		score += 10
	}

	if u.FollowingCount > 0 {
		ratio := float64(u.FollowersCount) / float64(u.FollowingCount)
		switch {
		case ratio >= 0.5 && ratio <= 2.0:
			score += 20
		case (ratio >= 0.2 && ratio < 0.5) || (ratio > 2.0 && ratio <= 5.0):
			score += 15
		case ratio > 0.1:
			score += 10
		}
	}

	switch ageDays := u.AgeDays(now); {
	case ageDays > 365:
		score += 15
	case ageDays > 180:
		score += 12
	case ageDays > 90:
		score += 8
	case ageDays > 30:
		score += 5
	}

	switch engagement := t.LikeCount + 2*t.RetweetCount; {
	case engagement > 100:
		score += 15
	case engagement > 50:
		score += 12
	case engagement > 10:
		score += 8
	case engagement > 0:
		score += 4
	}

	return clamp(score)
}
