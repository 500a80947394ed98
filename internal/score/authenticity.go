// Package score holds the heuristic scoring functions behind candidate
// targeting: account authenticity, content quality, reply and follow
// worthiness. All scores are clamped to [0,100] and all functions are pure.
package score

import (
	"strings"
	"time"
	"unicode"

	"growthbot/internal/model"
)

// authenticityFloor is the score at which an account counts as real.
const authenticityFloor = 40

// Authenticity scores how real an account looks, given its profile and the
// engagement metrics of one of its tweets. The hard gate returns (false, 0)
// without scoring; note that 0 is therefore ambiguous — a legitimately
// computed score of exactly 0 is indistinguishable from a gate failure, so
// callers must branch on the boolean, not the number.
func Authenticity(u model.User, t model.Tweet, now time.Time) (bool, float64) {
	ageDays := u.AgeDays(now)
	description := strings.TrimSpace(u.Description)

	// Hard filters for obvious low-quality or bot-like profiles.
	if ageDays < 30 {
		return false, 0
	}
	if u.FollowersCount < 10 {
		return false, 0
	}
	if u.FollowingCount > 15000 {
		return false, 0
	}
	if u.TweetCount < 20 {
		return false, 0
	}
	if len(description) < 8 {
		return false, 0
	}

	score := 0.0

	switch {
	case ageDays > 365:
		score += 20
	case ageDays > 180:
		score += 14
	default:
		score += 8
	}

	if u.FollowingCount > 0 {
		ratio := float64(u.FollowersCount) / float64(u.FollowingCount)
		switch {
		case ratio >= 0.2 && ratio <= 5:
			score += 20
		case ratio >= 0.1 && ratio <= 10:
			score += 12
		default:
			score += 3
		}
	}

	tweetsPerDay := float64(u.TweetCount) / float64(max(ageDays, 1))
	switch {
	case tweetsPerDay <= 12:
		score += 15
	case tweetsPerDay <= 30:
		score += 8
	default:
		score += 1
	}

	switch {
	case len(description) >= 40:
		score += 10
	case len(description) >= 20:
		score += 6
	default:
		score += 3
	}

	if u.Verified {
		score += 8
	}

	if digitRatio(u.Username) < 0.2 {
		score += 5
	}

	switch engagement := t.Engagement(); {
	case engagement >= 20:
		score += 12
	case engagement >= 5:
		score += 8
	case engagement >= 1:
		score += 4
	}

	score = clamp(score)
	return score >= authenticityFloor, score
}

// IsLikelyBot counts independent bot signals; three or more means bot.
// Looser than the authenticity gate, used as a cheap pre-filter.
func IsLikelyBot(u model.User, now time.Time) bool {
	if u.ID == "" && u.Username == "" {
		return true
	}
	ageDays := u.AgeDays(now)
	signals := 0

	if u.FollowingCount > 0 {
		ratio := float64(u.FollowersCount) / float64(u.FollowingCount)
		if ratio < 0.1 && u.FollowersCount < 100 {
			signals += 2
		}
	}
	if ageDays < 30 && u.TweetCount > 1000 {
		signals += 2
	}
	if ageDays > 0 && float64(u.TweetCount)/float64(ageDays) > 50 {
		signals++
	}
	if len(u.Description) < 10 {
		signals++
	}
	if u.FollowingCount > 5000 && u.FollowersCount < 100 {
		signals += 2
	}
	if u.TweetCount > 500 && u.FollowersCount < 10 {
		signals++
	}
	return signals >= 3
}

// Bucket classifies a profile by follower count for diversity balancing.
func Bucket(followers int) string {
	if followers < 500 {
		return "small"
	}
	if followers < 5000 {
		return "mid"
	}
	return "large"
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
