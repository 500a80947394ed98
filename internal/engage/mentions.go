package engage

import (
	"context"

	"github.com/charmbracelet/log"

	"growthbot/internal/model"
	"growthbot/internal/sanitize"
)

// mentionsFetchLimit bounds one mention poll; mentions arrive slowly
// enough that a modest page is plenty.
const mentionsFetchLimit = 50

// MentionsRun ingests inbound mentions into the store. The mentions book
// backs the talk-back rule, so this should run before any reply pass.
// Replayed mentions are ignored by the upsert.
func (r *Runner) MentionsRun(ctx context.Context) int {
	tweets, err := r.client.GetMentions(ctx, r.self.ID, mentionsFetchLimit)
	if err != nil {
		log.Warn("mention fetch failed", "err", err)
		return 0
	}
	stored := 0
	received := r.now().UTC()
	for _, t := range tweets {
		if t.ID == "" || t.AuthorID == "" {
			continue
		}
		if err := r.db.UpsertMention(ctx, model.Mention{
			MentionID:  t.ID,
			AuthorID:   t.AuthorID,
			Text:       sanitize.Input(t.Text),
			CreatedAt:  t.CreatedAt,
			ReceivedAt: received,
		}); err != nil {
			log.Error("mention store failed", "mention", t.ID, "err", err)
			continue
		}
		stored++
	}
	log.Info("mentions ingested", "fetched", len(tweets), "stored", stored)
	return stored
}
