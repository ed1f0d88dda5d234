package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariahq/aria/pkg/llm/assistant"
)

type fakeAssistant struct {
	history []assistant.Message
	reply   string
}

func (f *fakeAssistant) Chat(_ context.Context, history []assistant.Message) (string, error) {
	f.history = history
	return f.reply, nil
}

func TestChatPassesHistory(t *testing.T) {
	fake := &fakeAssistant{reply: "נסו קמפיין לידים"}
	ct := New(fake)

	out, err := ct.chat(context.Background(), map[string]any{
		"messages": []any{
			map[string]any{"role": "user", "content": "איזה קמפיין מתאים לעסק קטן?"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "נסו קמפיין לידים", out.JSON.(map[string]any)["reply"])
	require.Len(t, fake.history, 1)
	assert.Equal(t, "user", fake.history[0].Role)
}

func TestChatRequiresMessages(t *testing.T) {
	ct := New(&fakeAssistant{})
	_, err := ct.chat(context.Background(), map[string]any{"messages": []any{}})
	assert.Error(t, err)
}

func TestChatWithoutClient(t *testing.T) {
	ct := New(nil)
	_, err := ct.chat(context.Background(), map[string]any{
		"messages": []any{map[string]any{"role": "user", "content": "hi"}},
	})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
