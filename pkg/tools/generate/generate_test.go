package generate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariahq/aria/pkg/llm/gemini"
)

type fakeGenerator struct {
	prompt   string
	response string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ gemini.Params) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func TestVariantsParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"variants\":[{\"platform\":\"meta\",\"headline\":\"פרחים טריים\"}]}\n```"}
	gt := New(gen)

	out, err := gt.variants(context.Background(), map[string]any{
		"brand_name": "פרחי רותם",
		"industry":   "פרחים",
		"offer":      "20% הנחה",
		"tone":       "professional",
		"platforms":  []any{"meta"},
		"language":   "he",
		"objective":  "traffic",
	})
	require.NoError(t, err)

	payload := out.JSON.(map[string]any)
	assert.Equal(t, 1, payload["count"])
	variants := payload["variants"].([]map[string]any)
	assert.Equal(t, "meta", variants[0]["platform"])

	assert.Contains(t, gen.prompt, "פרחי רותם")
	assert.Contains(t, gen.prompt, "20% הנחה")
	assert.Contains(t, gen.prompt, "עברית")
}

func TestVariantsWithoutGenerator(t *testing.T) {
	gt := New(nil)
	_, err := gt.variants(context.Background(), map[string]any{
		"brand_name": "X", "industry": "Y", "offer": "Z",
	})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVariantsEmptyResultIsNotAnError(t *testing.T) {
	gen := &fakeGenerator{response: `{"variants": null}`}
	gt := New(gen)

	out, err := gt.variants(context.Background(), map[string]any{
		"brand_name": "X", "industry": "Y", "offer": "Z",
		"tone": "professional", "platforms": []any{"meta"},
		"language": "he", "objective": "traffic",
	})
	require.NoError(t, err)
	payload := out.JSON.(map[string]any)
	assert.Equal(t, 0, payload["count"])
}

func TestImagesBuildsURLs(t *testing.T) {
	gt := New(nil)

	out, err := gt.images(context.Background(), map[string]any{
		"prompt": "flower shop storefront",
		"style":  "photo",
		"count":  float64(3),
	})
	require.NoError(t, err)

	payload := out.JSON.(map[string]any)
	images := payload["images"].([]map[string]any)
	require.Len(t, images, 3)
	for _, img := range images {
		url := img["url"].(string)
		assert.True(t, strings.HasPrefix(url, imageBaseURL))
		assert.Contains(t, url, "width=1200")
		assert.Contains(t, url, "height=628")
		assert.Contains(t, url, "seed=")
		assert.Equal(t, "1200x628", img["dimensions"])
	}
}

func TestImagesWorksWithoutGemini(t *testing.T) {
	gt := New(nil)
	out, err := gt.images(context.Background(), map[string]any{
		"prompt": "minimal logo",
		"style":  "minimal",
		"count":  float64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.JSON.(map[string]any)["count"])
}

func TestParseBrief(t *testing.T) {
	gen := &fakeGenerator{response: `{"brand_name":"מספרת דני","industry":"מספרות","platforms":["meta"]}`}
	gt := New(gen)

	out, err := gt.parseBrief(context.Background(), map[string]any{
		"text": "מספרה בתל אביב מחפשת לקוחות חדשים",
	})
	require.NoError(t, err)

	payload := out.JSON.(map[string]any)
	brief := payload["brief"].(map[string]any)
	assert.Equal(t, "מספרת דני", brief["brand_name"])
	assert.Equal(t, "מספרה בתל אביב מחפשת לקוחות חדשים", payload["raw_text"])
	assert.Contains(t, gen.prompt, "מספרה בתל אביב")
}

func TestParseBriefInvalidModelOutput(t *testing.T) {
	gen := &fakeGenerator{response: "sorry, I can't do that"}
	gt := New(gen)

	_, err := gt.parseBrief(context.Background(), map[string]any{"text": "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}
