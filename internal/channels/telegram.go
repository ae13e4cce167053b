package channels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/verdevalley/concierge/internal/bus"
)

// maxTelegramMessage keeps chunks under Telegram's 4096-character cap with
// headroom for entity expansion.
const maxTelegramMessage = 4000

// TelegramChannel implements the Telegram bot via long polling.
type TelegramChannel struct {
	Base
	token  string
	bot    *tgbotapi.BotAPI
	logger *slog.Logger

	mu     sync.Mutex
	typing map[int64]context.CancelFunc
}

var _ Channel = (*TelegramChannel)(nil)

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(token string, allowFrom []string, b *bus.MessageBus, logger *slog.Logger) *TelegramChannel {
	return &TelegramChannel{
		Base:   NewBase("telegram", b, allowFrom),
		token:  token,
		logger: logger,
		typing: make(map[int64]context.CancelFunc),
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

// Start connects the bot and consumes updates until ctx is cancelled.
func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (t *TelegramChannel) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	// Commands are not conversation turns.
	if strings.HasPrefix(msg.Text, "/") {
		return
	}
	if !t.IsAllowed(msg.From.ID, msg.From.UserName) {
		t.logger.Warn("access denied", "channel", "telegram", "user_id", msg.From.ID)
		return
	}

	languageCode := msg.From.LanguageCode
	if languageCode == "" {
		languageCode = "en"
	}

	// Show typing until the reply for this chat goes out.
	t.startTyping(ctx, msg.Chat.ID)

	t.Publish(bus.InboundMessage{
		UserID:       msg.From.ID,
		ChatID:       msg.Chat.ID,
		Text:         msg.Text,
		MessageID:    int64(msg.MessageID),
		UpdateID:     int64(update.UpdateID),
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: languageCode,
	})
}

// Send delivers a reply, splitting it to fit Telegram's message size limit.
func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	t.stopTyping(msg.ChatID)

	for _, chunk := range splitMessage(msg.Text, maxTelegramMessage) {
		m := tgbotapi.NewMessage(msg.ChatID, chunk)
		if msg.ReplyToMessageID != 0 {
			m.ReplyToMessageID = msg.ReplyToMessageID
		}
		if _, err := t.bot.Send(m); err != nil {
			return fmt.Errorf("telegram: send to chat %d: %w", msg.ChatID, err)
		}
	}
	return nil
}

func (t *TelegramChannel) startTyping(ctx context.Context, chatID int64) {
	typingCtx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	if prev, ok := t.typing[chatID]; ok {
		prev()
	}
	t.typing[chatID] = cancel
	t.mu.Unlock()

	go func() {
		for {
			action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
			_, _ = t.bot.Send(action)
			select {
			case <-time.After(4 * time.Second):
			case <-typingCtx.Done():
				return
			}
		}
	}()
}

func (t *TelegramChannel) stopTyping(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cancel, ok := t.typing[chatID]; ok {
		cancel()
		delete(t.typing, chatID)
	}
}
