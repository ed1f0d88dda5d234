package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, "test-key")
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "key")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewClient("https://x.supabase.co", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSelectSendsAuthAndQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/campaigns", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "eq.active", r.URL.Query().Get("status"))
		w.Write([]byte(`[{"id":"c1","brand_name":"Acme"}]`))
	})

	query := url.Values{}
	query.Set("status", "eq.active")
	rows, err := client.Select(context.Background(), "campaigns", query)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0]["id"])
}

func TestInsertReturnsRepresentation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":"new-id","brand_name":"Acme"}]`))
	})

	rows, err := client.Insert(context.Background(), "campaigns", map[string]any{"brand_name": "Acme"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new-id", rows[0]["id"])
}

func TestUpdateToleratesEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusNoContent)
	})

	query := url.Values{}
	query.Set("id", "eq.c1")
	err := client.Update(context.Background(), "campaigns", query, map[string]any{"status": "paused"})
	assert.NoError(t, err)
}

func TestErrorIncludesStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	})

	_, err := client.Select(context.Background(), "campaigns", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestDelete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.c1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	query := url.Values{}
	query.Set("id", "eq.c1")
	assert.NoError(t, client.Delete(context.Background(), "campaigns", query))
}
