package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var ErrGeneration = errors.New("report generation failed")

// Facts is everything the model sees about a selected video.
type Facts struct {
	Channel     string
	Title       string
	Link        string
	PublishedAt time.Time
	Transcript  string
}

type Generator interface {
	Generate(ctx context.Context, facts Facts) (string, error)
}

const systemPrompt = `You are a professional FX strategist with an institutional investor's perspective.
Turn what a trusted market analyst said in a video into a high-quality market report for retail traders.

Rules:
- No entertainment. Extract facts and strategy only.
- Treat statements about interest rates, option barriers and institutional flows as the most important information.
- Where the analyst gives price levels, entries or stop-losses, keep the exact numbers.

Output format:
【1】Market overview 🌍
【2】Institutional view and fundamentals 📊
【3】Trading strategy and key levels 💰
【4】Source 📺 (title and URL only)

Write the whole report in %s.`

// Client implements Generator with go-openai. Any OpenAI-compatible base URL works.
type Client struct {
	client   *openai.Client
	model    string
	language string
}

var _ Generator = (*Client)(nil)

// NewClient builds a generator. Without an API key every call fails with ErrGeneration.
func NewClient(apiKey, baseURL, model, language string) *Client {
	var cli *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = strings.TrimRight(baseURL, "/")
		}
		cli = openai.NewClientWithConfig(cfg)
	}
	return &Client{client: cli, model: model, language: language}
}

func (c *Client) Ready() bool {
	return c.client != nil
}

// Generate makes a single chat completion call. Failures are not retried.
func (c *Client) Generate(ctx context.Context, facts Facts) (string, error) {
	if !c.Ready() {
		return "", fmt.Errorf("%w: missing API key", ErrGeneration)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, c.language)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(facts)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrGeneration)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return text, nil
}

func userPrompt(facts Facts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "■ Analyst: %s\n", facts.Channel)
	fmt.Fprintf(&b, "■ Video title: %s\n", facts.Title)
	fmt.Fprintf(&b, "■ URL: %s\n", facts.Link)
	if !facts.PublishedAt.IsZero() {
		fmt.Fprintf(&b, "■ Published: %s\n", facts.PublishedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "■ Transcript:\n%s\n", facts.Transcript)
	return b.String()
}
