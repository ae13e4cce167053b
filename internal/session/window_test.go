package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/verdevalley/concierge/internal/store"
	"github.com/verdevalley/concierge/internal/store/storetest"
)

func TestWindow_AppendTrimsToLimit(t *testing.T) {
	st := storetest.NewMemory()
	w := NewWindow(st, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := w.Append(ctx, 1, 1, "user", fmt.Sprintf("msg %d", i), int64(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := w.Load(ctx, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// The survivors are the newest three, oldest first.
	for i, want := range []string{"msg 3", "msg 4", "msg 5"} {
		if entries[i].Text != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, entries[i].Text)
		}
	}
}

func TestWindow_IsolatedPerUser(t *testing.T) {
	st := storetest.NewMemory()
	w := NewWindow(st, 2)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := w.Append(ctx, 1, 1, "user", "alpha", 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Append(ctx, 2, 2, "user", "beta", 0); err != nil {
		t.Fatal(err)
	}

	one, _ := w.Load(ctx, 1)
	two, _ := w.Load(ctx, 2)
	if len(one) != 2 {
		t.Errorf("user 1: expected 2 entries, got %d", len(one))
	}
	if len(two) != 1 || two[0].Text != "beta" {
		t.Errorf("user 2: expected untouched single entry, got %+v", two)
	}
}

func TestWindow_DefaultLimit(t *testing.T) {
	w := NewWindow(storetest.NewMemory(), 0)
	if w.Limit() != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, w.Limit())
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := Format(nil); got != EmptyWindowText {
		t.Errorf("expected %q, got %q", EmptyWindowText, got)
	}
}

func TestFormat_Transcript(t *testing.T) {
	now := time.Now()
	entries := []store.Entry{
		{Role: "user", Text: "Is the Glasshouse free this weekend?", Timestamp: now},
		{Role: "assistant", Text: "Let me check.", Timestamp: now},
	}
	want := "user: Is the Glasshouse free this weekend?\nassistant: Let me check."
	if got := Format(entries); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
