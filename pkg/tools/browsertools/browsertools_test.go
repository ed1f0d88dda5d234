package browsertools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariahq/aria/pkg/browser"
	"github.com/ariahq/aria/pkg/store"
	"github.com/ariahq/aria/pkg/tools"
)

func newFixture(t *testing.T) (*Tools, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	mgr := browser.NewManager(st, browser.Options{})
	return New(mgr, st), st
}

func toolNames(ts []tools.Tool) []string {
	names := make([]string, 0, len(ts))
	for _, tool := range ts {
		names = append(names, tool.Name())
	}
	return names
}

func TestAllExposesFiveTools(t *testing.T) {
	bt, _ := newFixture(t)
	assert.Equal(t, []string{
		"browser_navigate",
		"browser_screenshot",
		"browser_click",
		"browser_type",
		"browser_status",
	}, toolNames(bt.All()))
}

func TestNavigateWithoutBrowserFails(t *testing.T) {
	bt, _ := newFixture(t)
	_, err := bt.navigate(context.Background(), map[string]any{"url": "https://example.com"})
	assert.ErrorIs(t, err, browser.ErrNotInitialized)
}

func TestStatusWorksWithoutBrowser(t *testing.T) {
	bt, st := newFixture(t)
	require.NoError(t, st.UpdateSession("facebook", store.Update{
		LoggedIn: store.Bool(true),
		Email:    store.String("ads@example.com"),
	}))

	out, err := bt.status(context.Background(), nil)
	require.NoError(t, err)

	payload := out.JSON.(map[string]any)
	browserState := payload["browser"].(map[string]any)
	assert.Equal(t, false, browserState["running"])

	fb := payload["facebook"].(store.Record)
	assert.True(t, fb.LoggedIn)
	assert.Equal(t, "ads@example.com", fb.Email)

	google := payload["google"].(store.Record)
	assert.False(t, google.LoggedIn)
}

func TestNavigateRequiresURL(t *testing.T) {
	bt, _ := newFixture(t)
	reg := tools.NewRegistry()
	for _, tool := range bt.All() {
		require.NoError(t, reg.Register(tool))
	}
	_, err := reg.Execute(context.Background(), "browser_navigate", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field: url")
}
