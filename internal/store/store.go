// Package store defines the datastore collaborator contract: the permanent
// chat log, the per-user rolling context window, the user table, and the
// vector-indexed knowledge base. Backends live in the supabase and sqlite
// subpackages.
package store

import (
	"context"
	"time"
)

// User is one row in the users table, keyed by the chat platform user id.
type User struct {
	UserID       int64
	ChatID       int64
	FirstName    string
	LastName     string
	LanguageCode string
	CreatedAt    time.Time
}

// Message is one chat message row. The same shape is used for the permanent
// chat log and for the rolling context window.
type Message struct {
	UserID    int64
	ChatID    int64
	Role      string // "user" | "assistant"
	Text      string
	MessageID int64 // zero for assistant replies
	UpdateID  int64
	Timestamp time.Time
}

// Entry is the {role, text, timestamp} projection of a context window row,
// as loaded for prompt construction. Entries are immutable once written.
type Entry struct {
	Role      string
	Text      string
	Timestamp time.Time
}

// Metadata describes the provenance of a knowledge-base chunk.
type Metadata struct {
	FileName string `json:"fileName"`
	Date     string `json:"date"`
}

// Document is one embedded chunk in the knowledge-base table.
type Document struct {
	Content   string
	Embedding []float64
	Metadata  Metadata
}

// Store is the full datastore contract.
//
// TrimContext is the only deletion path for the context window: it deletes
// oldest-first so that at most limit rows remain for the user. LoadContext
// returns rows oldest-first. The store is the sole arbiter of consistency
// for concurrent writers to the same user's window.
type Store interface {
	// EnsureUser inserts u if no row with its UserID exists.
	// Reports whether a new row was created.
	EnsureUser(ctx context.Context, u User) (bool, error)

	// LogMessage appends m to the permanent chat log. Never trimmed.
	LogMessage(ctx context.Context, m Message) error

	AppendContext(ctx context.Context, m Message) error
	TrimContext(ctx context.Context, userID int64, limit int) error
	LoadContext(ctx context.Context, userID int64) ([]Entry, error)

	// ContextUserIDs returns the distinct user ids present in the context
	// window table. Used by the retention sweep to re-trim every window.
	ContextUserIDs(ctx context.Context) ([]int64, error)

	// MatchDocuments runs a similarity search against the knowledge base and
	// returns up to count chunks, best match first.
	MatchDocuments(ctx context.Context, embedding []float64, count int) ([]Document, error)
	InsertDocuments(ctx context.Context, docs []Document) error
	DeleteDocumentsByFile(ctx context.Context, fileName string) error

	// PurgeLogsBefore deletes chat-log rows older than cutoff and returns the
	// number of rows removed where the backend reports it.
	PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
