// Package sqlite implements store.Store on a local SQLite database.
// It is the development and test backend; production deployments use the
// supabase backend instead. Vector search is a brute-force cosine scan over
// JSON-encoded embeddings, which is adequate at knowledge-base scale.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/verdevalley/concierge/internal/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) a SQLite database at the given path and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		chat_id INTEGER NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		language_code TEXT NOT NULL DEFAULT 'en',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		chat_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		message_id INTEGER,
		update_id INTEGER,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_logs_user ON chat_logs(user_id, timestamp);

	CREATE TABLE IF NOT EXISTS minimal_context (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		chat_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		message_id INTEGER,
		update_id INTEGER,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_context_user ON minimal_context(user_id, timestamp);

	CREATE TABLE IF NOT EXISTS guest_info (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		embedding TEXT NOT NULL,
		metadata TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- Users ---

func (s *Store) EnsureUser(ctx context.Context, u store.User) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE user_id = ?`, u.UserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", u.UserID, err)
	}
	if exists > 0 {
		return false, nil
	}

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, chat_id, first_name, last_name, language_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.UserID, u.ChatID, u.FirstName, u.LastName, u.LanguageCode, createdAt)
	if err != nil {
		return false, fmt.Errorf("insert user %d: %w", u.UserID, err)
	}
	return true, nil
}

// --- Chat log ---

func (s *Store) LogMessage(ctx context.Context, m store.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_logs (user_id, chat_id, role, text, message_id, update_id, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.ChatID, m.Role, m.Text, m.MessageID, m.UpdateID, m.Timestamp)
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

func (s *Store) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_logs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge chat logs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// --- Context window ---

func (s *Store) AppendContext(ctx context.Context, m store.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO minimal_context (user_id, chat_id, role, text, message_id, update_id, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.ChatID, m.Role, m.Text, m.MessageID, m.UpdateID, m.Timestamp)
	if err != nil {
		return fmt.Errorf("append context: %w", err)
	}
	return nil
}

func (s *Store) TrimContext(ctx context.Context, userID int64, limit int) error {
	// Keep the newest limit rows; the autoincrement id breaks timestamp ties
	// so rapid appends trim deterministically.
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM minimal_context
		 WHERE user_id = ?
		   AND id NOT IN (
			SELECT id FROM minimal_context
			WHERE user_id = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		 )`,
		userID, userID, limit)
	if err != nil {
		return fmt.Errorf("trim context for %d: %w", userID, err)
	}
	return nil
}

func (s *Store) LoadContext(ctx context.Context, userID int64) ([]store.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, text, timestamp FROM minimal_context
		 WHERE user_id = ?
		 ORDER BY timestamp ASC, id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("load context for %d: %w", userID, err)
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.Role, &e.Text, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ContextUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM minimal_context`)
	if err != nil {
		return nil, fmt.Errorf("list context users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Knowledge base ---

func (s *Store) InsertDocuments(ctx context.Context, docs []store.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert documents: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO guest_info (content, embedding, metadata) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		emb, err := json.Marshal(d.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, d.Content, string(emb), string(meta)); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteDocumentsByFile(ctx context.Context, fileName string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM guest_info WHERE metadata LIKE ?`, "%"+fileName+"%")
	if err != nil {
		return fmt.Errorf("delete documents for %s: %w", fileName, err)
	}
	return nil
}

func (s *Store) MatchDocuments(ctx context.Context, embedding []float64, count int) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, embedding, metadata FROM guest_info`)
	if err != nil {
		return nil, fmt.Errorf("scan knowledge base: %w", err)
	}
	defer rows.Close()

	type scored struct {
		doc   store.Document
		score float64
	}
	var candidates []scored

	for rows.Next() {
		var content, embJSON, metaJSON string
		if err := rows.Scan(&content, &embJSON, &metaJSON); err != nil {
			return nil, err
		}
		var d store.Document
		d.Content = content
		if err := json.Unmarshal([]byte(embJSON), &d.Embedding); err != nil {
			continue
		}
		_ = json.Unmarshal([]byte(metaJSON), &d.Metadata)
		candidates = append(candidates, scored{doc: d, score: cosine(embedding, d.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if count > len(candidates) {
		count = len(candidates)
	}
	out := make([]store.Document, 0, count)
	for _, c := range candidates[:count] {
		out = append(out, c.doc)
	}
	return out, nil
}

// cosine returns the cosine similarity of a and b, or 0 when either is
// zero-length or the dimensions differ.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
