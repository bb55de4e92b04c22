package telegram

import (
	"context"
	"crypto-alert-bot/internal/commands"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"time"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
	// RequestTimeout bounds every API call on top of the long polling timeout
	RequestTimeout time.Duration
}

// sender is the part of tgbotapi.BotAPI the bot uses to deliver messages
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// CommandHandler answers chat commands
type CommandHandler interface {
	CommandAlert(ctx context.Context, user int64, argument string) string
	CommandAlertList(user int64) string
	CommandPrice(ctx context.Context, argument string) (string, error)
}

var _ CommandHandler = (*commands.Handler)(nil)

// Bot telegram interaction client
type Bot struct {
	Bot      *tgbotapi.BotAPI
	Config   BotConfig
	sender   sender
	commands CommandHandler
}

// Message a telegram message struct
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}
