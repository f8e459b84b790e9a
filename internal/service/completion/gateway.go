// Package completion talks to the chat-completion service that produces
// the bot's next line.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pitchbot/feedback-relay/internal/model/conversation"
)

var (
	// ErrRateLimited asks the caller to retry later; the gateway itself
	// never retries.
	ErrRateLimited = errors.New("completion service rate limited")
	// ErrAuthFailed is a configuration problem, not a transient one.
	ErrAuthFailed = errors.New("completion service rejected credentials")
	// ErrUnavailable covers every other upstream failure.
	ErrUnavailable = errors.New("completion service unavailable")
)

// Config carries the completion service settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// Gateway requests single chat completions for a transcript.
type Gateway struct {
	client      *openai.Client
	model       string
	temperature float32
}

// New builds a gateway from the given config.
func New(cfg Config) *Gateway {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Gateway{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// NextTurn renders the transcript as alternating assistant/user messages
// under the system prompt and requests one completion.
func (g *Gateway) NextTurn(ctx context.Context, systemPrompt string, turns []conversation.Turn) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toMessages(systemPrompt, turns),
		Temperature: g.temperature,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choice list", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// toMessages maps bot questions to the assistant role and user answers
// to the user role, system prompt first.
func toMessages(systemPrompt string, turns []conversation.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)*2+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range turns {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.Question},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.Answer},
		)
	}
	return messages
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
