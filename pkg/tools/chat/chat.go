// Package chat exposes the marketing assistant as a tool, for free-form
// questions that don't map to a structured operation.
package chat

import (
	"context"
	"errors"

	"github.com/ariahq/aria/pkg/llm/assistant"
	"github.com/ariahq/aria/pkg/tools"
)

// ErrNotConfigured is returned per call when no assistant client is wired.
var ErrNotConfigured = errors.New("assistant not configured. Set LOVABLE_API_KEY in .env")

// Assistant answers a conversation. Satisfied by *assistant.Client.
type Assistant interface {
	Chat(ctx context.Context, history []assistant.Message) (string, error)
}

// Tools holds the chat handler. client may be nil.
type Tools struct {
	client Assistant
}

// New creates the chat tool set.
func New(client Assistant) *Tools {
	return &Tools{client: client}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("chat", "Ask the marketing assistant a free-form question",
			tools.ObjectSchema(map[string]any{
				"messages": map[string]any{
					"type":        "array",
					"description": `Conversation turns as {"role": "user"|"assistant", "content": "..."}`,
				},
			}, []string{"messages"}), t.chat),
	}
}

func (t *Tools) chat(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if t.client == nil {
		return nil, ErrNotConfigured
	}

	var input struct {
		Messages []assistant.Message `json:"messages"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	if len(input.Messages) == 0 {
		return nil, errors.New("messages must contain at least one turn")
	}

	reply, err := t.client.Chat(ctx, input.Messages)
	if err != nil {
		return nil, err
	}
	return tools.JSONOutput(map[string]any{"reply": reply}), nil
}
