// Package assistant exposes the marketing chat assistant through an
// OpenAI-compatible gateway.
package assistant

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBaseURL is the AI gateway serving the assistant model.
	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"
	// DefaultModel is the gateway model identifier.
	DefaultModel = "google/gemini-2.5-flash"
)

// systemPrompt frames the assistant as a marketing copilot. Hebrew, matching
// the product's audience.
const systemPrompt = `אתה עוזר שיווק מקצועי של בוסטי. תפקידך:
1. לעזור למשתמשים לבנות קמפיינים שיווקיים
2. להמליץ על אסטרטגיות שיווק
3. לתת טיפים לשיפור קמפיינים
4. לענות על שאלות על פלטפורמות שיווק שונות

תמיד תהיה ידידותי, מקצועי וקונקרטי. תן תשובות קצרות וממוקדות.
תשובותיך יהיו בעברית.`

// ErrNotConfigured is returned by the constructor when no gateway key is set.
var ErrNotConfigured = fmt.Errorf("assistant is not configured: set LOVABLE_API_KEY")

// Message is one turn of the conversation passed in by the caller.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client answers marketing questions via the gateway.
type Client struct {
	api   openai.Client
	model string
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the gateway model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient builds an assistant client. baseURL falls back to the default
// gateway when empty.
func NewClient(apiKey, baseURL string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		api:   openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model: DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Chat sends the conversation, prefixed with the system prompt, and returns
// the assistant's reply.
func (c *Client) Chat(ctx context.Context, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, msg := range history {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("assistant chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
