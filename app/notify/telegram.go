package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramMaxRunes = 4096

// Telegram delivers text to one chat through the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram authenticates the bot. An empty endpoint uses the public Bot API.
func NewTelegram(token, endpoint string, chatID int64) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	for _, chunk := range split(text, telegramMaxRunes) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrDelivery, err)
		}
		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, chunk)); err != nil {
			return fmt.Errorf("%w: telegram send: %w", ErrDelivery, err)
		}
	}
	return nil
}
