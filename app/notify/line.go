package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

const (
	DefaultLineBaseURL = "https://api.line.me"

	lineMaxRunes    = 5000
	lineMaxMessages = 5
)

// Line delivers text through the LINE Messaging API push endpoint.
type Line struct {
	bot    *messaging_api.MessagingApiAPI
	userID string
}

var _ Notifier = (*Line)(nil)

func NewLine(httpClient *http.Client, baseURL, accessToken, userID string) (*Line, error) {
	if baseURL == "" {
		baseURL = DefaultLineBaseURL
	}
	bot, err := messaging_api.NewMessagingApiAPI(accessToken,
		messaging_api.WithHTTPClient(httpClient),
		messaging_api.WithEndpoint(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LINE client: %w", err)
	}
	return &Line{bot: bot, userID: userID}, nil
}

func (l *Line) Notify(ctx context.Context, text string) error {
	chunks := split(text, lineMaxRunes)
	for start := 0; start < len(chunks); start += lineMaxMessages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrDelivery, err)
		}

		end := min(start+lineMaxMessages, len(chunks))
		messages := make([]messaging_api.MessageInterface, 0, end-start)
		for _, chunk := range chunks[start:end] {
			messages = append(messages, messaging_api.TextMessage{Text: chunk})
		}

		if _, err := l.bot.PushMessage(&messaging_api.PushMessageRequest{
			To:       l.userID,
			Messages: messages,
		}, ""); err != nil {
			return fmt.Errorf("%w: LINE push: %w", ErrDelivery, err)
		}
	}
	return nil
}
