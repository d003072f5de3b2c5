// Package notify sends operator notifications about payment events.
// Delivery is best effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"
)

// Notifier delivers a short text to the operators.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// NopNotifier drops every message.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, string) {}

// sender is the part of *telego.Bot the notifier needs.
type sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramNotifier posts messages to the operator chat.
type TelegramNotifier struct {
	bot    sender
	chatID int64
}

// NewTelegramNotifier creates a notifier for the bot token and operator chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Notify sends text as HTML to the operator chat.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) {
	msg := tu.Message(tu.ID(n.chatID), text).WithParseMode(telego.ModeHTML)
	if _, err := n.bot.SendMessage(ctx, msg); err != nil {
		log.WithError(err).WithField("chat_id", n.chatID).Warn("Failed to notify operators")
	}
}

// New returns a TelegramNotifier when a token is configured, NopNotifier otherwise.
func New(token string, chatID int64) Notifier {
	if token == "" || chatID == 0 {
		log.Info("Telegram notifications disabled")
		return NopNotifier{}
	}
	n, err := NewTelegramNotifier(token, chatID)
	if err != nil {
		log.WithError(err).Warn("Telegram notifications disabled")
		return NopNotifier{}
	}
	log.WithField("chat_id", chatID).Info("Telegram notifications enabled")
	return n
}
