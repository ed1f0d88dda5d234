package campaigns

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariahq/aria/pkg/db/supabase"
)

func newFixture(t *testing.T, handler http.HandlerFunc) *Tools {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	db, err := supabase.NewClient(srv.URL, "test-key")
	require.NoError(t, err)
	return New(db)
}

func TestUnconfiguredDatabase(t *testing.T) {
	ct := New(nil)
	_, err := ct.list(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateSendsOnlyBriefFields(t *testing.T) {
	var row map[string]any
	ct := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"c1","brand_name":"Acme","status":"draft"}]`))
	})

	out, err := ct.create(context.Background(), map[string]any{
		"brand_name": "Acme",
		"industry":   "flowers",
		"offer":      "20% off",
		"tone":       "professional",
		"objective":  "TRAFFIC",
		"platforms":  []any{"meta"},
		"extraneous": "dropped",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", row["brand_name"])
	assert.NotContains(t, row, "extraneous")

	payload := out.JSON.(map[string]any)
	assert.Equal(t, "Campaign created successfully", payload["message"])
	assert.Equal(t, "c1", payload["campaign"].(map[string]any)["id"])
}

func TestListAppliesStatusFilterAndLimit(t *testing.T) {
	ct := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "*", q.Get("select"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "eq.active", q.Get("status"))
		w.Write([]byte(`[{"id":"c1"},{"id":"c2"}]`))
	})

	out, err := ct.list(context.Background(), map[string]any{
		"limit":  float64(5),
		"status": "active",
	})
	require.NoError(t, err)
	payload := out.JSON.(map[string]any)
	assert.Equal(t, 2, payload["count"])
}

func TestGetNotFound(t *testing.T) {
	ct := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := ct.get(context.Background(), map[string]any{"id": "missing-id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Campaign not found: missing-id")
}

func TestUpdateReportsSortedFields(t *testing.T) {
	ct := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.c1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	out, err := ct.update(context.Background(), map[string]any{
		"id": "c1",
		"updates": map[string]any{
			"status": "active",
			"budget": float64(500),
		},
	})
	require.NoError(t, err)
	payload := out.JSON.(map[string]any)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, []string{"budget", "status"}, payload["updated_fields"])
}

func TestUpdateRejectsEmptyUpdates(t *testing.T) {
	ct := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := ct.update(context.Background(), map[string]any{
		"id":      "c1",
		"updates": map[string]any{},
	})
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	ct := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.c1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	out, err := ct.delete(context.Background(), map[string]any{"id": "c1"})
	require.NoError(t, err)
	assert.Equal(t, "Campaign deleted", out.JSON.(map[string]any)["message"])
}
