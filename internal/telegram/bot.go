package telegram

import (
	"context"
	"crypto-alert-bot/internal/commands"
	"crypto-alert-bot/lib/translation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 15 * time.Second

const sourceURL = "https://github\\.com/coinpaprika/telegram\\-bot\\-v2"

// NewBot creates new telegram bot
func NewBot(c BotConfig, handler CommandHandler) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(c.Token, tgbotapi.APIEndpoint, newHTTPClient(c))
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:      bot,
		Config:   c,
		sender:   bot,
		commands: handler,
	}, nil
}

// newHTTPClient returns a client whose timeout outlasts a long polling request
func newHTTPClient(c BotConfig) *http.Client {
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if c.UpdatesTimeout > 0 {
		timeout += time.Duration(c.UpdatesTimeout) * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// GetUpdatesChannel gets new updates updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	if b.Bot == nil {
		return nil, errors.New("telegram bot is not connected")
	}
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig), nil
}

// StopReceivingUpdates stops the long polling started by GetUpdatesChannel
func (b *Bot) StopReceivingUpdates() {
	if b.Bot != nil {
		b.Bot.StopReceivingUpdates()
	}
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	_, err := b.sender.Send(msg)
	return errors.Wrapf(err, "could not send message to chat %d", m.ChatID)
}

// Notify sends text to the user's private chat. It returns when the message is
// sent or ctx is done, whichever comes first.
func (b *Bot) Notify(ctx context.Context, user int64, text string) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- errors.Errorf("sending to user %d panicked: %v", user, r)
			}
		}()
		done <- b.SendMessage(Message{ChatID: user, Text: text})
	}()

	select {
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "notify user %d", user)
	case err := <-done:
		return err
	}
}

// HandleUpdate processes Telegram updates and returns the reply text
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) string {
	text := helpText()
	log.Debugf("received command: %s", u.Message.Command())

	// alerts belong to the chat they were set in, notifications go back there
	user := u.Message.Chat.ID

	switch u.Message.Command() {
	case "source":
		text = sourceURL
	case "p", "price":
		reply, err := b.commands.CommandPrice(ctx, u.Message.CommandArguments())
		if err != nil {
			text = translation.Translate("Coin not found")
			if !commands.IsUnknownSymbol(err) {
				log.Error(err)
			}
		} else {
			text = reply
		}
	case "alert":
		args := u.Message.CommandArguments()
		if strings.TrimSpace(args) == "list" {
			text = b.commands.CommandAlertList(user)
		} else {
			text = b.commands.CommandAlert(ctx, user, args)
		}
	case "listalerts":
		text = b.commands.CommandAlertList(user)
	}

	return text
}

func helpText() string {
	return translation.Translate("Command help message")
}
