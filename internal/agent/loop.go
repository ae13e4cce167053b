package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/verdevalley/concierge/internal/bus"
	"github.com/verdevalley/concierge/internal/session"
	"github.com/verdevalley/concierge/internal/store"
)

// PipelineApology is sent when any step of the message pipeline fails after
// the message was received. The guest always gets a reply.
const PipelineApology = "Sorry, something went wrong on my end. Please try again in a moment."

// Loop consumes inbound messages from the bus and runs the full pipeline for
// each one: register the user, log and window the message, run the agent,
// log and window the reply, and publish it back to the channel.
type Loop struct {
	bus    *bus.MessageBus
	store  store.Store
	window *session.Window
	runner *Runner
	logger *slog.Logger
}

// NewLoop wires the pipeline together.
func NewLoop(b *bus.MessageBus, st store.Store, window *session.Window, runner *Runner, logger *slog.Logger) *Loop {
	return &Loop{
		bus:    b,
		store:  st,
		window: window,
		runner: runner,
		logger: logger,
	}
}

// Run consumes the inbound queue until ctx is cancelled. Each message is
// handled in its own goroutine; the datastore arbitrates concurrent window
// writes for the same user.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("agent loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("agent loop stopped")
			return ctx.Err()
		case msg := <-l.bus.Inbound():
			go l.handle(ctx, msg)
		}
	}
}

func (l *Loop) handle(ctx context.Context, msg bus.InboundMessage) {
	preview := msg.Text
	if len(preview) > 60 {
		preview = preview[:60]
	}
	l.logger.Info("message received",
		"channel", msg.Channel, "user_id", msg.UserID, "chat_id", msg.ChatID, "text", preview)

	reply, err := l.process(ctx, msg)
	if err != nil {
		l.logger.Error("pipeline failed", "user_id", msg.UserID, "error", err)
		reply = PipelineApology
	}

	l.bus.PublishOutbound(bus.OutboundMessage{
		Channel:          msg.Channel,
		ChatID:           msg.ChatID,
		Text:             reply,
		ReplyToMessageID: int(msg.MessageID),
	})
}

// process runs the pipeline steps for one message and returns the reply text.
func (l *Loop) process(ctx context.Context, msg bus.InboundMessage) (string, error) {
	created, err := l.store.EnsureUser(ctx, store.User{
		UserID:       msg.UserID,
		ChatID:       msg.ChatID,
		FirstName:    msg.FirstName,
		LastName:     msg.LastName,
		LanguageCode: msg.LanguageCode,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if created {
		l.logger.Info("new user registered", "user_id", msg.UserID, "first_name", msg.FirstName)
	}

	if err := l.store.LogMessage(ctx, store.Message{
		UserID:    msg.UserID,
		ChatID:    msg.ChatID,
		Role:      "user",
		Text:      msg.Text,
		MessageID: msg.MessageID,
		UpdateID:  msg.UpdateID,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return "", err
	}

	if err := l.window.Append(ctx, msg.UserID, msg.ChatID, "user", msg.Text, msg.UpdateID); err != nil {
		return "", err
	}

	entries, err := l.window.Load(ctx, msg.UserID)
	if err != nil {
		return "", err
	}
	recentConversation := session.Format(entries)

	reply, err := l.runner.Run(ctx, msg.Text, recentConversation)
	if err != nil {
		return "", err
	}

	if err := l.store.LogMessage(ctx, store.Message{
		UserID:    msg.UserID,
		ChatID:    msg.ChatID,
		Role:      "assistant",
		Text:      reply,
		UpdateID:  msg.UpdateID,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return "", err
	}

	if err := l.window.Append(ctx, msg.UserID, msg.ChatID, "assistant", reply, msg.UpdateID); err != nil {
		return "", err
	}

	return reply, nil
}

// ProcessDirect runs the pipeline for a message that did not arrive through
// a channel, returning the reply instead of publishing it. Used by the chat
// command.
func (l *Loop) ProcessDirect(ctx context.Context, msg bus.InboundMessage) (string, error) {
	return l.process(ctx, msg)
}
