// Package research turns a topic string into a scored, deduplicated pool
// of candidate tweets.
package research

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"growthbot/internal/metrics"
	"growthbot/internal/model"
	"growthbot/internal/sanitize"
	"growthbot/internal/score"
	"growthbot/internal/xclient"
)

// Budget caps the number of search API calls in one run. It is a plain
// counter, independent of wall-clock time.
type Budget struct{ remaining int }

func NewBudget(calls int) *Budget { return &Budget{remaining: calls} }

// Take consumes one search call; false when the budget is spent.
func (b *Budget) Take() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

func (b *Budget) Remaining() int { return b.remaining }

// Engine collects candidates through the platform search capability.
type Engine struct {
	client         xclient.Client
	maxVariants    int
	resultsPerCall int
	candidateFloor float64
	budget         *Budget
	now            func() time.Time
}

func NewEngine(client xclient.Client, maxVariants, resultsPerCall int, candidateFloor float64, budget *Budget) *Engine {
	if maxVariants < 1 {
		maxVariants = 1
	}
	return &Engine{
		client:         client,
		maxVariants:    maxVariants,
		resultsPerCall: resultsPerCall,
		candidateFloor: candidateFloor,
		budget:         budget,
		now:            time.Now,
	}
}

// QueryVariants expands a topic into sanitized search query variants:
// the exact phrase, the phrase excluding reshares, and a quoted
// exact-match excluding reshares. Order is priority order.
func (e *Engine) QueryVariants(topic string) []string {
	base := sanitize.Query(topic)
	if base == "" {
		return nil
	}
	variants := []string{base, base + " -is:retweet", `"` + base + `" -is:retweet`}
	seen := make(map[string]struct{}, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		cleaned := sanitize.Query(v)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	if len(out) > e.maxVariants {
		out = out[:e.maxVariants]
	}
	return out
}

// CollectCandidates gathers, dedupes, and scores candidate tweets for a
// topic. A variant search returning nothing is skipped; an empty overall
// result returns an empty slice, never an error.
func (e *Engine) CollectCandidates(ctx context.Context, topic string, maxCandidates int) []model.Candidate {
	variants := e.QueryVariants(topic)
	if len(variants) == 0 {
		return nil
	}

	perQuery := maxCandidates / len(variants)
	if perQuery > e.resultsPerCall {
		perQuery = e.resultsPerCall
	}
	if perQuery < 10 {
		perQuery = 10
	}

	var raw []model.Candidate
	for _, q := range variants {
		if !e.budget.Take() {
			log.Debug("search budget exhausted", "topic", topic)
			break
		}
		metrics.SearchCall()
		tweets, err := e.client.SearchRecent(ctx, q, perQuery)
		if err != nil {
			log.Warn("search failed", "query", q, "err", err)
			continue
		}
		for _, t := range tweets {
			raw = append(raw, model.Candidate{Tweet: t, ResearchQuery: q})
		}
	}
	if len(raw) == 0 {
		return nil
	}

	// First occurrence wins: query execution order is priority order.
	seen := make(map[string]struct{}, len(raw))
	deduped := raw[:0]
	for _, c := range raw {
		if c.ID == "" {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		deduped = append(deduped, c)
	}

	now := e.now().UTC()
	for i := range deduped {
		deduped[i].CandidateScore = score.CandidateValue(deduped[i].Tweet, now)
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].CandidateScore > deduped[j].CandidateScore
	})

	selected := make([]model.Candidate, 0, len(deduped))
	for _, c := range deduped {
		if c.CandidateScore < e.candidateFloor {
			continue
		}
		selected = append(selected, c)
		if len(selected) >= maxCandidates {
			break
		}
	}
	log.Info("research done",
		"topic", topic, "variants", len(variants), "raw", len(raw),
		"deduped", len(deduped), "selected", len(selected))
	return selected
}
