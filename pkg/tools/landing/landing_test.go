package landing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariahq/aria/pkg/llm/gemini"
	"github.com/ariahq/aria/pkg/store"
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

const samplePage = "```html\n<!DOCTYPE html><html dir=\"rtl\"><head><title>פרחי רותם</title></head><body><h1>פרחים טריים</h1></body></html>\n```"

func newFixture(t *testing.T, gen Generator) (*Tools, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	lt := New(gen, st)
	lt.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return lt, st
}

func TestCreateWritesCleanHTML(t *testing.T) {
	gen := &fakeGenerator{response: samplePage}
	lt, st := newFixture(t, gen)

	out, err := lt.create(context.Background(), map[string]any{
		"brand_name":  "פרחי רותם",
		"headline":    "פרחים טריים כל יום",
		"description": "משלוחים באותו היום",
		"cta_text":    "צרו קשר",
		"color":       "#6366f1",
		"language":    "he",
	})
	require.NoError(t, err)

	payload := out.JSON.(map[string]any)
	assert.Equal(t, true, payload["success"])
	filename := payload["filename"].(string)
	assert.Equal(t, "פרחי-רותם-1700000000000.html", filename)
	assert.Equal(t, "פרחי רותם", payload["title"])

	dir, err := st.LandingPagesDir()
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "<!DOCTYPE html>"))
	assert.NotContains(t, string(content), "```")

	assert.Contains(t, gen.prompt, "פרחי רותם")
	assert.Contains(t, gen.prompt, "עברית (RTL)")
}

func TestCreateWithoutGenerator(t *testing.T) {
	lt, _ := newFixture(t, nil)
	_, err := lt.create(context.Background(), map[string]any{
		"brand_name": "X", "headline": "Y", "description": "Z",
	})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPublishExistingPage(t *testing.T) {
	lt, st := newFixture(t, nil)
	dir, err := st.LandingPagesDir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme-1.html"), []byte("<html></html>"), 0o644))

	out, err := lt.publish(context.Background(), map[string]any{"filename": "acme-1.html"})
	require.NoError(t, err)
	payload := out.JSON.(map[string]any)
	assert.Equal(t, true, payload["success"])
	assert.Contains(t, payload["message"], "acme-1.html")
}

func TestPublishMissingPage(t *testing.T) {
	lt, _ := newFixture(t, nil)
	_, err := lt.publish(context.Background(), map[string]any{"filename": "nope.html"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Landing page not found: nope.html")
}

func TestPublishRejectsPathTraversal(t *testing.T) {
	lt, _ := newFixture(t, nil)
	_, err := lt.publish(context.Background(), map[string]any{"filename": "../sessions.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filename")
}

func TestDocumentTitleMissing(t *testing.T) {
	assert.Equal(t, "", documentTitle("<html><body>no title</body></html>"))
}
