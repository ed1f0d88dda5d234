package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariahq/aria/pkg/store"
)

func newUninitializedManager(t *testing.T) *Manager {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	return NewManager(st, Options{
		ViewportWidth:  1280,
		ViewportHeight: 720,
		Locale:         "he-IL",
		UserAgent:      "test-agent",
	})
}

func TestOperationsBeforeInitialize(t *testing.T) {
	m := newUninitializedManager(t)

	_, err := m.CurrentPage()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = m.Navigate("https://example.com")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = m.Screenshot()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = m.Click("#button")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = m.Type("#field", "hello")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = m.PageInfo()
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.False(t, m.WaitForSelector("#anything", 10))
	assert.ErrorIs(t, m.SaveAuthState(), ErrNotInitialized)
	assert.False(t, m.Running())
}

func TestShutdownIdempotentWhenNeverInitialized(t *testing.T) {
	m := newUninitializedManager(t)
	m.Shutdown()
	m.Shutdown()
	assert.False(t, m.Running())
}

func TestClearAuthStateWithoutBrowser(t *testing.T) {
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	m := NewManager(st, Options{})

	// No live context: only the persisted document is reset.
	require.NoError(t, m.ClearAuthState())
	assert.True(t, st.AuthStateExists())
}
