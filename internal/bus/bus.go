// Package bus decouples chat channels from the agent pipeline with a pair of
// in-process queues. Channels publish inbound messages and consume outbound
// replies; the pipeline does the reverse.
package bus

// InboundMessage is a user message received from a chat channel.
type InboundMessage struct {
	Channel      string // source channel name, e.g. "telegram"
	UserID       int64
	ChatID       int64
	Text         string
	MessageID    int64
	UpdateID     int64
	FirstName    string
	LastName     string
	LanguageCode string
}

// OutboundMessage is a reply to deliver through a chat channel.
type OutboundMessage struct {
	Channel          string
	ChatID           int64
	Text             string
	ReplyToMessageID int
}

// MessageBus carries messages between channels and the agent pipeline.
// Both queues are buffered so a slow consumer applies backpressure instead
// of dropping messages.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
}

// NewMessageBus creates a bus with the given queue capacity per direction.
func NewMessageBus(capacity int) *MessageBus {
	if capacity <= 0 {
		capacity = 100
	}
	return &MessageBus{
		inbound:  make(chan InboundMessage, capacity),
		outbound: make(chan OutboundMessage, capacity),
	}
}

// PublishInbound enqueues a user message for the pipeline.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	b.inbound <- msg
}

// PublishOutbound enqueues a reply for channel delivery.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.outbound <- msg
}

// Inbound returns the receive side of the inbound queue.
func (b *MessageBus) Inbound() <-chan InboundMessage {
	return b.inbound
}

// Outbound returns the receive side of the outbound queue.
func (b *MessageBus) Outbound() <-chan OutboundMessage {
	return b.outbound
}
