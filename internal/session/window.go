// Package session maintains the bounded rolling context window each user
// carries between turns. The window lives in the datastore, not in memory,
// so restarts keep conversational continuity and concurrent writers share
// one arbiter.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verdevalley/concierge/internal/store"
)

// DefaultLimit is the number of messages a window retains.
const DefaultLimit = 10

// EmptyWindowText stands in for the transcript when no history exists yet.
const EmptyWindowText = "(No previous conversation)"

// Window is a per-user rolling transcript capped at a fixed number of
// messages. Every append is followed by a trim, so the window holds the
// most recent limit messages at all times.
type Window struct {
	store store.Store
	limit int
}

// NewWindow builds a Window over the given store. A limit of zero or less
// uses DefaultLimit.
func NewWindow(st store.Store, limit int) *Window {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Window{store: st, limit: limit}
}

// Limit returns the window's retention cap.
func (w *Window) Limit() int {
	return w.limit
}

// Append adds one message to the user's window and trims it back to the cap.
// The timestamp is assigned here, never taken from the chat platform.
func (w *Window) Append(ctx context.Context, userID, chatID int64, role, text string, updateID int64) error {
	m := store.Message{
		UserID:    userID,
		ChatID:    chatID,
		Role:      role,
		Text:      text,
		UpdateID:  updateID,
		Timestamp: time.Now().UTC(),
	}
	if err := w.store.AppendContext(ctx, m); err != nil {
		return fmt.Errorf("append to window: %w", err)
	}
	if err := w.store.TrimContext(ctx, userID, w.limit); err != nil {
		return fmt.Errorf("trim window: %w", err)
	}
	return nil
}

// Trim re-applies the retention cap without appending. Used by the retention
// sweep after the limit configuration changes.
func (w *Window) Trim(ctx context.Context, userID int64) error {
	if err := w.store.TrimContext(ctx, userID, w.limit); err != nil {
		return fmt.Errorf("trim window: %w", err)
	}
	return nil
}

// Load returns the user's window oldest-first.
func (w *Window) Load(ctx context.Context, userID int64) ([]store.Entry, error) {
	return w.store.LoadContext(ctx, userID)
}

// Format renders window entries as a readable transcript, one "role: text"
// line per entry, for injection into the system prompt.
func Format(entries []store.Entry) string {
	if len(entries) == 0 {
		return EmptyWindowText
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Role+": "+e.Text)
	}
	return strings.Join(lines, "\n")
}
