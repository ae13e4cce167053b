// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/verdevalley/concierge/internal/store"
)

type contextRow struct {
	seq int64
	msg store.Message
}

// Memory is an in-memory store.Store. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	seq    int64
	users  map[int64]store.User
	logs   []store.Message
	window []contextRow
	docs   []store.Document
}

var _ store.Store = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[int64]store.User)}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) EnsureUser(_ context.Context, u store.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.UserID]; ok {
		return false, nil
	}
	m.users[u.UserID] = u
	return true, nil
}

// Users returns a snapshot of the user table.
func (m *Memory) Users() []store.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out
}

func (m *Memory) LogMessage(_ context.Context, msg store.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, msg)
	return nil
}

// Logs returns a snapshot of the chat log.
func (m *Memory) Logs() []store.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Message, len(m.logs))
	copy(out, m.logs)
	return out
}

func (m *Memory) PurgeLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []store.Message
	var purged int64
	for _, msg := range m.logs {
		if msg.Timestamp.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, msg)
	}
	m.logs = kept
	return purged, nil
}

func (m *Memory) AppendContext(_ context.Context, msg store.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.window = append(m.window, contextRow{seq: m.seq, msg: msg})
	return nil
}

func (m *Memory) TrimContext(_ context.Context, userID int64, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []contextRow
	for _, r := range m.window {
		if r.msg.UserID == userID {
			rows = append(rows, r)
		}
	}
	if len(rows) <= limit {
		return nil
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	drop := make(map[int64]bool, len(rows)-limit)
	for _, r := range rows[:len(rows)-limit] {
		drop[r.seq] = true
	}

	var kept []contextRow
	for _, r := range m.window {
		if !drop[r.seq] {
			kept = append(kept, r)
		}
	}
	m.window = kept
	return nil
}

func (m *Memory) LoadContext(_ context.Context, userID int64) ([]store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []contextRow
	for _, r := range m.window {
		if r.msg.UserID == userID {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]store.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.Entry{Role: r.msg.Role, Text: r.msg.Text, Timestamp: r.msg.Timestamp})
	}
	return out, nil
}

func (m *Memory) ContextUserIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int64]bool)
	var ids []int64
	for _, r := range m.window {
		if !seen[r.msg.UserID] {
			seen[r.msg.UserID] = true
			ids = append(ids, r.msg.UserID)
		}
	}
	return ids, nil
}

func (m *Memory) MatchDocuments(_ context.Context, _ []float64, count int) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if count > len(m.docs) {
		count = len(m.docs)
	}
	out := make([]store.Document, count)
	copy(out, m.docs[:count])
	return out, nil
}

func (m *Memory) InsertDocuments(_ context.Context, docs []store.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, docs...)
	return nil
}

// Documents returns a snapshot of the knowledge base.
func (m *Memory) Documents() []store.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Document, len(m.docs))
	copy(out, m.docs)
	return out
}

func (m *Memory) DeleteDocumentsByFile(_ context.Context, fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []store.Document
	for _, d := range m.docs {
		if !strings.Contains(d.Metadata.FileName, fileName) {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}
