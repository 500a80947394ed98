package selector

import (
	"strings"

	"github.com/google/uuid"
)

// Session carries the run-scoped "already engaged" sets. It lives for one
// run and is discarded afterward; nothing in it is persisted. Explicitly
// constructed and passed around so tests and concurrent runs never share
// ambient state.
type Session struct {
	// RunID tags activity-log metadata so a run's actions can be grouped.
	RunID string

	engaged map[string]map[string]struct{} // action -> lowercased usernames
}

func NewSession() *Session {
	return &Session{
		RunID:   uuid.NewString(),
		engaged: make(map[string]map[string]struct{}),
	}
}

// MarkEngaged records that this run performed action against username.
func (s *Session) MarkEngaged(action, username string) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return
	}
	if s.engaged[action] == nil {
		s.engaged[action] = make(map[string]struct{})
	}
	s.engaged[action][username] = struct{}{}
}

// Engaged reports whether this run already performed action against username.
func (s *Session) Engaged(action, username string) bool {
	username = strings.ToLower(strings.TrimSpace(username))
	_, ok := s.engaged[action][username]
	return ok
}

// EngagedUsernames returns the usernames engaged with action this run,
// usable directly as a Select exclusion set.
func (s *Session) EngagedUsernames(action string) map[string]struct{} {
	out := make(map[string]struct{}, len(s.engaged[action]))
	for u := range s.engaged[action] {
		out[u] = struct{}{}
	}
	return out
}
