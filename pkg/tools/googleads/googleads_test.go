package googleads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariahq/aria/pkg/browser"
	"github.com/ariahq/aria/pkg/store"
)

func newFixture(t *testing.T) (*Tools, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	mgr := browser.NewManager(st, browser.Options{})
	return New(mgr, st), st
}

func TestCheckLoginDefaultsToFalse(t *testing.T) {
	gt, _ := newFixture(t)
	out, err := gt.checkLogin(context.Background(), nil)
	require.NoError(t, err)
	payload := out.JSON.(map[string]any)
	assert.Equal(t, false, payload["logged_in"])
}

func TestCheckLoginReflectsStore(t *testing.T) {
	gt, st := newFixture(t)
	require.NoError(t, st.UpdateSession("google", store.Update{
		LoggedIn: store.Bool(true),
		Email:    store.String("ads@example.com"),
	}))

	out, err := gt.checkLogin(context.Background(), nil)
	require.NoError(t, err)
	payload := out.JSON.(map[string]any)
	assert.Equal(t, true, payload["logged_in"])
	assert.Equal(t, "ads@example.com", payload["email"])
}

func TestCampaignToolsRequireLogin(t *testing.T) {
	gt, _ := newFixture(t)

	_, err := gt.createCampaign(context.Background(), map[string]any{
		"campaign_name": "Search A",
		"daily_budget":  float64(20),
		"target_url":    "https://example.com",
	})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = gt.getMetrics(context.Background(), map[string]any{"date_range": "last_7d"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = gt.listCampaigns(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCreateCampaignWithoutBrowser(t *testing.T) {
	gt, st := newFixture(t)
	require.NoError(t, st.UpdateSession("google", store.Update{LoggedIn: store.Bool(true)}))

	_, err := gt.createCampaign(context.Background(), map[string]any{
		"campaign_name": "Search A",
		"daily_budget":  float64(20),
		"target_url":    "https://example.com",
	})
	assert.ErrorIs(t, err, browser.ErrNotInitialized)
}

func TestLoginWithoutBrowser(t *testing.T) {
	gt, _ := newFixture(t)
	_, err := gt.login(context.Background(), map[string]any{
		"email":    "ads@example.com",
		"password": "secret",
	})
	assert.ErrorIs(t, err, browser.ErrNotInitialized)
}

func TestAllToolNames(t *testing.T) {
	gt, _ := newFixture(t)
	names := make([]string, 0)
	for _, tool := range gt.All() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{
		"google_login",
		"google_check_login",
		"google_create_campaign",
		"google_get_metrics",
		"google_list_campaigns",
	}, names)
}
