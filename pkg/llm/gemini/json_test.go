package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	text := "Here you go:\n```json\n{\"variants\": []}\n```\nEnjoy."
	assert.Equal(t, `{"variants": []}`, ExtractJSON(text))
}

func TestExtractJSONBareFence(t *testing.T) {
	text := "```\n[1, 2, 3]\n```"
	assert.Equal(t, "[1, 2, 3]", ExtractJSON(text))
}

func TestExtractJSONUnfenced(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("  {\"a\":1}\n"))
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Variants []struct {
			Headline string `json:"headline"`
		} `json:"variants"`
	}
	text := "```json\n{\"variants\":[{\"headline\":\"Big Sale\"}]}\n```"
	require.NoError(t, DecodeJSON(text, &out))
	require.Len(t, out.Variants, 1)
	assert.Equal(t, "Big Sale", out.Variants[0].Headline)
}

func TestDecodeJSONInvalid(t *testing.T) {
	var out map[string]any
	err := DecodeJSON("not json", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestStripHTMLFence(t *testing.T) {
	assert.Equal(t, "<!DOCTYPE html><html></html>",
		StripHTMLFence("```html\n<!DOCTYPE html><html></html>\n```"))
	assert.Equal(t, "<p>plain</p>", StripHTMLFence("<p>plain</p>"))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
