package channels

import (
	"context"
	"log/slog"

	"github.com/verdevalley/concierge/internal/bus"
)

// Manager owns all enabled channels and routes outbound messages.
type Manager struct {
	channels map[string]Channel
	b        *bus.MessageBus
	logger   *slog.Logger
}

// NewManager creates an empty Manager; register channels with Register.
func NewManager(b *bus.MessageBus, logger *slog.Logger) *Manager {
	return &Manager{
		channels: make(map[string]Channel),
		b:        b,
		logger:   logger,
	}
}

// Register adds a channel under its own name.
func (m *Manager) Register(ch Channel) {
	m.channels[ch.Name()] = ch
	m.logger.Info("channel enabled", "name", ch.Name())
}

// EnabledChannels returns the names of all registered channels.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	return names
}

// StartAll starts all channels concurrently and dispatches outbound messages.
// Blocks until ctx is cancelled.
func (m *Manager) StartAll(ctx context.Context) error {
	go m.dispatchOutbound(ctx)

	for name, ch := range m.channels {
		go func(n string, c Channel) {
			m.logger.Info("starting channel", "name", n)
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error("channel exited with error", "name", n, "error", err)
			}
		}(name, ch)
	}

	<-ctx.Done()
	return ctx.Err()
}

// dispatchOutbound routes each outbound message to its channel's Send.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-m.b.Outbound():
			ch, ok := m.channels[msg.Channel]
			if !ok {
				m.logger.Debug("unknown channel for outbound message", "channel", msg.Channel)
				continue
			}
			if err := ch.Send(ctx, msg); err != nil {
				m.logger.Error("send error", "channel", msg.Channel, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
