// Package supabase is a thin client for the Supabase PostgREST API. It only
// covers the operations the campaign tools need: filtered selects, inserts
// returning the created row, patches, and deletes.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned by the constructor when credentials are absent.
var ErrNotConfigured = fmt.Errorf("supabase is not configured: set SUPABASE_URL and SUPABASE_KEY")

// Client talks to one Supabase project's REST endpoint.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient builds a client for the given project URL and API key.
func NewClient(projectURL, apiKey string) (*Client, error) {
	if projectURL == "" || apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Select runs a filtered GET against a table and returns the matching rows.
func (c *Client) Select(ctx context.Context, table string, query url.Values) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, table, query, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Insert creates a row and returns the representation the database stored,
// including generated columns.
func (c *Client) Insert(ctx context.Context, table string, row any) ([]map[string]any, error) {
	body, err := c.do(ctx, http.MethodPost, table, nil, row, "return=representation")
	if err != nil {
		return nil, err
	}
	return decodeRows(body)
}

// Update patches the rows selected by query with the given fields.
func (c *Client) Update(ctx context.Context, table string, query url.Values, fields any) error {
	_, err := c.do(ctx, http.MethodPatch, table, query, fields, "return=minimal")
	return err
}

// Delete removes the rows selected by query.
func (c *Client) Delete(ctx context.Context, table string, query url.Values) error {
	_, err := c.do(ctx, http.MethodDelete, table, query, nil, "return=minimal")
	return err
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, payload any, prefer string) ([]byte, error) {
	endpoint := c.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", table, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", table, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read supabase response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("supabase error: %d - %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// decodeRows tolerates the empty body PostgREST sends for minimal responses.
func decodeRows(body []byte) ([]map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		// A single-object response (e.g. from an RPC) still counts as one row.
		var row map[string]any
		if err2 := json.Unmarshal(body, &row); err2 == nil {
			return []map[string]any{row}, nil
		}
		return nil, fmt.Errorf("decode supabase rows: %w", err)
	}
	return rows, nil
}
