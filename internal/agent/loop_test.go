package agent

import (
	"context"
	"testing"

	"github.com/verdevalley/concierge/internal/bus"
	"github.com/verdevalley/concierge/internal/schema"
	"github.com/verdevalley/concierge/internal/session"
	"github.com/verdevalley/concierge/internal/store/storetest"
)

func testInbound(text string) bus.InboundMessage {
	return bus.InboundMessage{
		Channel:      "telegram",
		UserID:       42,
		ChatID:       42,
		Text:         text,
		MessageID:    7,
		UpdateID:     100,
		FirstName:    "Ada",
		LanguageCode: "en",
	}
}

func TestProcessDirect_FullPipeline(t *testing.T) {
	st := storetest.NewMemory()
	window := session.NewWindow(st, 10)
	provider := &stubProvider{responses: []schema.Response{endTurn("Welcome to Verde Valley!")}}
	runner := NewRunner(provider, testRegistry(t), "", 0, testLogger())
	loop := NewLoop(bus.NewMessageBus(10), st, window, runner, testLogger())

	reply, err := loop.ProcessDirect(context.Background(), testInbound("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Welcome to Verde Valley!" {
		t.Errorf("unexpected reply %q", reply)
	}

	if users := st.Users(); len(users) != 1 || users[0].UserID != 42 {
		t.Errorf("expected user 42 registered, got %+v", users)
	}

	logs := st.Logs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 chat log rows, got %d", len(logs))
	}
	if logs[0].Role != "user" || logs[0].Text != "hello" {
		t.Errorf("unexpected user log %+v", logs[0])
	}
	if logs[1].Role != "assistant" || logs[1].Text != reply {
		t.Errorf("unexpected assistant log %+v", logs[1])
	}
	if logs[0].MessageID != 7 {
		t.Errorf("expected user log message_id 7, got %d", logs[0].MessageID)
	}
	if logs[1].MessageID != 0 {
		t.Errorf("assistant log should have no message_id, got %d", logs[1].MessageID)
	}

	entries, err := window.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("load window: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 window entries, got %d", len(entries))
	}
	if entries[0].Role != "user" || entries[1].Role != "assistant" {
		t.Errorf("unexpected window order: %+v", entries)
	}
}

func TestProcessDirect_WindowReachesAgent(t *testing.T) {
	st := storetest.NewMemory()
	window := session.NewWindow(st, 10)
	provider := &stubProvider{responses: []schema.Response{endTurn("first"), endTurn("second")}}
	runner := NewRunner(provider, testRegistry(t), "base", 0, testLogger())
	loop := NewLoop(bus.NewMessageBus(10), st, window, runner, testLogger())

	if _, err := loop.ProcessDirect(context.Background(), testInbound("one")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := loop.ProcessDirect(context.Background(), testInbound("two")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The runner only sees the current message; earlier turns arrive via the
	// window. Reloading after the second turn shows all four entries.
	entries, err := window.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("load window: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 window entries, got %d", len(entries))
	}
	if entries[0].Text != "one" || entries[1].Text != "first" {
		t.Errorf("unexpected window contents: %+v", entries)
	}
}
