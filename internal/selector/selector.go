// Package selector picks a bounded, diverse subset of scored candidates:
// one per author, real accounts only, balanced across audience buckets,
// and deduplicated by content fingerprint.
package selector

import (
	"sort"
	"strings"
	"time"

	"growthbot/internal/model"
	"growthbot/internal/score"
)

// fingerprintLen is how much leading text identifies near-identical content.
const fingerprintLen = 60

// Select filters candidates to real-looking accounts and picks a diverse
// set by follower bucket. Returns the picks, the realized bucket
// distribution, and the eligible pool size.
//
// The per-bucket cap is max(1, target/2), relaxed for the final slot: once
// only one slot remains, any bucket may fill it. With adversarial
// distributions that lets one bucket exceed its cap by one — intentional
// slack that prevents under-filling when a single bucket dominates.
func Select(candidates []model.Candidate, targetCount int, excludeUsernames map[string]struct{}, ownUsername string) ([]model.Candidate, map[string]int, int) {
	bucketCounts := map[string]int{"small": 0, "mid": 0, "large": 0}
	if targetCount <= 0 {
		return nil, bucketCounts, 0
	}

	excluded := make(map[string]struct{}, len(excludeUsernames))
	for u := range excludeUsernames {
		if u != "" {
			excluded[strings.ToLower(u)] = struct{}{}
		}
	}
	own := strings.ToLower(strings.TrimSpace(ownUsername))

	now := time.Now().UTC()
	seenAuthors := make(map[string]struct{})
	var eligible []model.Candidate
	for _, c := range candidates {
		username := strings.TrimSpace(c.Author.Username)
		if username == "" {
			continue
		}
		lower := strings.ToLower(username)
		if own != "" && lower == own {
			continue
		}
		if _, ok := excluded[lower]; ok {
			continue
		}

		authorKey := c.AuthorID
		if authorKey == "" {
			authorKey = lower
		}
		if _, ok := seenAuthors[authorKey]; ok {
			continue
		}
		seenAuthors[authorKey] = struct{}{}

		isReal, authScore := score.Authenticity(c.Author, c.Tweet, now)
		if !isReal {
			continue
		}
		c.AuthenticityScore = authScore
		c.Bucket = score.Bucket(c.Author.FollowersCount)
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.AuthenticityScore != b.AuthenticityScore {
			return a.AuthenticityScore > b.AuthenticityScore
		}
		if a.LikeCount != b.LikeCount {
			return a.LikeCount > b.LikeCount
		}
		return a.ReplyCount > b.ReplyCount
	})

	bucketLimit := targetCount / 2
	if bucketLimit < 1 {
		bucketLimit = 1
	}

	var selected []model.Candidate
	seenContent := make(map[string]struct{})
	for _, c := range eligible {
		if len(selected) >= targetCount {
			break
		}
		if bucketCounts[c.Bucket] >= bucketLimit && len(selected) < targetCount-1 {
			continue
		}
		fp := fingerprint(c.Text)
		if fp != "" {
			if _, ok := seenContent[fp]; ok {
				continue
			}
			seenContent[fp] = struct{}{}
		}
		selected = append(selected, c)
		bucketCounts[c.Bucket]++
	}
	return selected, bucketCounts, len(eligible)
}

func fingerprint(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if runes := []rune(s); len(runes) > fingerprintLen {
		s = string(runes[:fingerprintLen])
	}
	return strings.TrimSpace(s)
}
