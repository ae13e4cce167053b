package channels

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verdevalley/concierge/internal/bus"
)

func TestSplitMessage_Short(t *testing.T) {
	chunks := splitMessage("hello", 4000)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("expected single chunk, got %v", chunks)
	}
}

func TestSplitMessage_PrefersNewlines(t *testing.T) {
	content := strings.Repeat("x", 50) + "\n" + strings.Repeat("y", 50)
	chunks := splitMessage(content, 60)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != strings.Repeat("x", 50) {
		t.Errorf("expected break at newline, got %q", chunks[0])
	}
}

func TestSplitMessage_FallsBackToSpaces(t *testing.T) {
	content := strings.Repeat("a", 30) + " " + strings.Repeat("b", 40)
	chunks := splitMessage(content, 50)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != strings.Repeat("a", 30) {
		t.Errorf("expected break at space, got %q", chunks[0])
	}
	if chunks[1] != strings.Repeat("b", 40) {
		t.Errorf("expected trimmed second chunk, got %q", chunks[1])
	}
}

func TestSplitMessage_HardCut(t *testing.T) {
	content := strings.Repeat("z", 100)
	chunks := splitMessage(content, 40)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 40 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(c))
		}
	}
}

func TestSplitMessage_HardCutKeepsRunesIntact(t *testing.T) {
	// No newlines or spaces, three bytes per rune: a byte-offset cut would
	// land mid-character.
	content := strings.Repeat("語", 100)
	chunks := splitMessage(content, 40)

	var rebuilt strings.Builder
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
		if len(c) > 40 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(c))
		}
		rebuilt.WriteString(c)
	}
	if rebuilt.String() != content {
		t.Error("hard cut lost content")
	}
}

func TestBase_IsAllowed(t *testing.T) {
	b := NewBase("telegram", bus.NewMessageBus(1), []string{"42", "june"})

	if !b.IsAllowed(42, "") {
		t.Error("expected id match")
	}
	if !b.IsAllowed(7, "june") {
		t.Error("expected username match")
	}
	if b.IsAllowed(7, "someone") {
		t.Error("expected denial for unknown sender")
	}

	open := NewBase("telegram", bus.NewMessageBus(1), nil)
	if !open.IsAllowed(7, "") {
		t.Error("empty allowlist admits everyone")
	}
}

func TestBase_PublishSetsChannel(t *testing.T) {
	mb := bus.NewMessageBus(1)
	b := NewBase("telegram", mb, nil)

	b.Publish(bus.InboundMessage{UserID: 1, Text: "hi"})

	got := <-mb.Inbound()
	if got.Channel != "telegram" {
		t.Errorf("expected channel telegram, got %q", got.Channel)
	}
	if got.Text != "hi" {
		t.Errorf("expected text preserved, got %q", got.Text)
	}
}
