package store

import "context"

// SessionMemory binds a store to one agent session. It satisfies the agent
// loop's Memory interface.
type SessionMemory struct {
	store     *ConversationStore
	sessionID string
	limit     int
}

// NewSessionMemory creates a memory for a new session. limit bounds recalled
// turns; non-positive means DefaultSearchLimit.
func NewSessionMemory(s *ConversationStore, limit int) *SessionMemory {
	return &SessionMemory{store: s, sessionID: NewSessionID(), limit: limit}
}

// SessionID returns the id exchanges are stored under.
func (m *SessionMemory) SessionID() string { return m.sessionID }

func (m *SessionMemory) Recall(ctx context.Context, query string) (string, error) {
	results, err := m.store.Search(ctx, query, m.limit)
	if err != nil {
		return "", err
	}
	return FormatContext(results), nil
}

func (m *SessionMemory) Remember(ctx context.Context, query, answer string) error {
	return m.store.AppendExchange(ctx, m.sessionID, query, answer)
}
