// Package store persists agent conversations in SQLite so later runs can recall
// earlier exchanges.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"intentrouter/internal/logging"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSearchLimit is used when Search is called with a non-positive limit.
const DefaultSearchLimit = 3

// scanWindow caps how many recent turns Search scores.
const scanWindow = 500

// SearchResult is one remembered turn.
type SearchResult struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Score     float64   `json:"score"` // fraction of query terms found, 0..1
}

// Stats summarizes the store.
type Stats struct {
	ExchangeCount int       `json:"exchange_count"`
	SessionCount  int       `json:"session_count"`
	LastUpdated   time.Time `json:"last_updated"`
	Path          string    `json:"path"`
}

// ConversationStore is the SQLite-backed memory. All access goes through one
// mutex; the connection pool is limited to a single connection.
type ConversationStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open creates or opens the database at path.
func Open(path string) (*ConversationStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.StoreDebug("%s failed: %v", pragma, err)
		}
	}

	s := &ConversationStore{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("conversation store ready at %s", path)
	return s, nil
}

func (s *ConversationStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversation_turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON conversation_turns(session_id);
	CREATE INDEX IF NOT EXISTS idx_turns_created ON conversation_turns(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *ConversationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the database file path.
func (s *ConversationStore) Path() string { return s.path }

// AppendExchange stores a user message and the assistant's answer.
func (s *ConversationStore) AppendExchange(ctx context.Context, sessionID, user, assistant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixNano()
	const insert = "INSERT INTO conversation_turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)"
	if _, err := tx.ExecContext(ctx, insert, sessionID, RoleUser, user, now); err != nil {
		return fmt.Errorf("failed to store user turn: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insert, sessionID, RoleAssistant, assistant, now+1); err != nil {
		return fmt.Errorf("failed to store assistant turn: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit exchange: %w", err)
	}

	logging.StoreDebug("stored exchange for session %s", sessionID)
	return nil
}

// Search returns up to limit turns that share terms with query, best first.
// Ties go to the newer turn.
func (s *ConversationStore) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Search")
	defer timer.Stop()

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	conditions := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)+1)
	for _, term := range terms {
		conditions = append(conditions, "LOWER(content) LIKE ?")
		args = append(args, "%"+term+"%")
	}
	args = append(args, scanWindow)

	q := fmt.Sprintf(
		"SELECT session_id, role, content, created_at FROM conversation_turns WHERE %s ORDER BY created_at DESC, id DESC LIMIT ?",
		strings.Join(conditions, " OR "),
	)

	s.mu.Lock()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("memory search failed: %w", err)
	}
	results, err := scanResults(rows, terms)
	rows.Close()
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("memory search failed: %w", err)
	}

	// Rows arrive newest first; a stable sort keeps that order among equal scores.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	logging.StoreDebug("memory search %q returned %d result(s)", query, len(results))
	return results, nil
}

func scanResults(rows *sql.Rows, terms []string) ([]SearchResult, error) {
	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var created int64
		if err := rows.Scan(&r.SessionID, &r.Role, &r.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		r.Timestamp = time.Unix(0, created).UTC()
		r.Score = score(r.Content, terms)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Stats reports how many exchanges are stored.
func (s *ConversationStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Path: s.path}
	var turns int
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT session_id), MAX(created_at) FROM conversation_turns",
	).Scan(&turns, &st.SessionCount, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	st.ExchangeCount = turns / 2
	if last.Valid {
		st.LastUpdated = time.Unix(0, last.Int64).UTC()
	}
	return st, nil
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// FormatContext renders results for the agent's system prompt.
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "\n### Memory %d (relevance: %.2f)\n", i+1, r.Score)
		fmt.Fprintf(&sb, "**%s**: %s\n", r.Role, r.Content)
	}
	return sb.String()
}

// searchTerms lowercases query and drops duplicates and very short words.
func searchTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, f := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	}) {
		if len(f) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

func score(content string, terms []string) float64 {
	lower := strings.ToLower(content)
	hits := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
