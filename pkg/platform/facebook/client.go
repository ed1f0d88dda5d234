// Package facebook wraps the Marketing API subset used by the campaign tools.
// Authentication rides on the user access token captured during browser login,
// read fresh for every request so a re-login takes effect immediately.
package facebook

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

// DefaultBaseURL is the Graph API endpoint, pinned to the version the token
// scopes were requested against.
const DefaultBaseURL = "https://graph.facebook.com/v18.0"

// TokenFunc supplies the current access token. It is consulted on every
// request; returning an error aborts the call before anything is sent.
type TokenFunc func() (string, error)

// Client issues Graph API requests on behalf of the logged-in user.
type Client struct {
	baseURL string
	token   TokenFunc
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different Graph endpoint. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// NewClient builds a Graph API client around a token source.
func NewClient(token TokenFunc, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET to the given Graph path with the token and params in the
// query string.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	for key, values := range params {
		query[key] = values
	}
	query.Set("access_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build graph request: %w", err)
	}
	return c.send(req, path)
}

// Post issues a POST with a JSON body; the token travels in the query string,
// matching how the Marketing API expects write calls.
func (c *Client) Post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode graph payload: %w", err)
	}

	endpoint := c.endpoint(path) + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build graph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, path)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) send(req *http.Request, path string) (map[string]any, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read graph response: %w", err)
	}

	// The Graph API reports failures in the body, regardless of HTTP status.
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("graph request %s: status %d", path, resp.StatusCode)
		}
		return nil, fmt.Errorf("decode graph response: %w", err)
	}
	if apiErr, ok := result["error"].(map[string]any); ok {
		if msg, ok := apiErr["message"].(string); ok && msg != "" {
			return nil, fmt.Errorf("facebook api error: %s", msg)
		}
		return nil, fmt.Errorf("graph request %s: status %d", path, resp.StatusCode)
	}
	return result, nil
}
