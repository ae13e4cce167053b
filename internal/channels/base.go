// Package channels provides chat-platform channel implementations.
package channels

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/verdevalley/concierge/internal/bus"
)

// Channel is a chat transport: it receives user messages onto the bus and
// delivers replies routed back to it.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
}

// Base holds the state shared by all channels: the bus and the sender
// allowlist. An empty allowlist admits everyone.
type Base struct {
	channelName string
	b           *bus.MessageBus
	allowFrom   []string
}

// NewBase creates a Base with the given channel name, bus, and allowlist.
func NewBase(name string, b *bus.MessageBus, allowFrom []string) Base {
	return Base{channelName: name, b: b, allowFrom: allowFrom}
}

// IsAllowed checks whether the sender is on the allowlist, matching either
// the numeric user id or the platform username.
func (b *Base) IsAllowed(userID int64, username string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	id := strconv.FormatInt(userID, 10)
	for _, allowed := range b.allowFrom {
		if allowed == id || (username != "" && allowed == username) {
			return true
		}
	}
	return false
}

// Publish pushes an inbound message onto the bus under this channel's name.
func (b *Base) Publish(msg bus.InboundMessage) {
	msg.Channel = b.channelName
	b.b.PublishInbound(msg)
}

// splitMessage splits content into chunks that fit within maxLen,
// preferring newline breaks, then space breaks, then a hard cut.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}
		cut := content[:maxLen]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		if pos <= 0 {
			// Hard cut: back off to a rune boundary so multibyte text
			// never splits mid-character.
			pos = maxLen
			for pos > 0 && !utf8.RuneStart(content[pos]) {
				pos--
			}
			if pos == 0 {
				pos = maxLen
			}
		}
		chunks = append(chunks, content[:pos])
		content = strings.TrimLeft(content[pos:], " \t")
	}
	return chunks
}
