// Package browsertools exposes direct control of the shared browser session:
// navigation, screenshots, clicking, typing, and a combined status view.
package browsertools

import (
	"context"

	"github.com/ariahq/aria/pkg/browser"
	"github.com/ariahq/aria/pkg/store"
	"github.com/ariahq/aria/pkg/tools"
)

// Tools bundles the browser tool handlers around their shared dependencies.
type Tools struct {
	browser *browser.Manager
	store   *store.Store
}

// New creates the browser tool set.
func New(b *browser.Manager, st *store.Store) *Tools {
	return &Tools{browser: b, store: st}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("browser_navigate", "Navigate to a URL and take a screenshot",
			tools.ObjectSchema(map[string]any{
				"url": map[string]any{"type": "string", "description": "URL to navigate to"},
			}, []string{"url"}), t.navigate),

		tools.NewFunc("browser_screenshot", "Take a screenshot of the current page",
			tools.ObjectSchema(nil, nil), t.screenshot),

		tools.NewFunc("browser_click", "Click an element on the page by CSS selector or text",
			tools.ObjectSchema(map[string]any{
				"selector": map[string]any{"type": "string", "description": "CSS selector or text content to click"},
			}, []string{"selector"}), t.click),

		tools.NewFunc("browser_type", "Type text into an input field",
			tools.ObjectSchema(map[string]any{
				"selector": map[string]any{"type": "string", "description": "CSS selector of input field"},
				"text":     map[string]any{"type": "string", "description": "Text to type"},
			}, []string{"selector", "text"}), t.typeText),

		tools.NewFunc("browser_status", "Get current browser state and login status for all platforms",
			tools.ObjectSchema(nil, nil), t.status),
	}
}

func (t *Tools) navigate(_ context.Context, args map[string]any) (*tools.Output, error) {
	url, _ := args["url"].(string)
	info, err := t.browser.Navigate(url)
	if err != nil {
		return nil, err
	}
	img, err := t.browser.Screenshot()
	if err != nil {
		return nil, err
	}
	return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
		"title": info.Title,
		"url":   info.URL,
	}), nil
}

func (t *Tools) screenshot(_ context.Context, _ map[string]any) (*tools.Output, error) {
	info, err := t.browser.PageInfo()
	if err != nil {
		return nil, err
	}
	img, err := t.browser.Screenshot()
	if err != nil {
		return nil, err
	}
	return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
		"title": info.Title,
		"url":   info.URL,
	}), nil
}

func (t *Tools) click(_ context.Context, args map[string]any) (*tools.Output, error) {
	selector, _ := args["selector"].(string)
	result, err := t.browser.Click(selector)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"success": result.Success,
		"message": result.Message,
	}
	if result.Success {
		if info, err := t.browser.PageInfo(); err == nil {
			payload["title"] = info.Title
			payload["url"] = info.URL
		}
	}
	return tools.JSONOutput(payload), nil
}

func (t *Tools) typeText(_ context.Context, args map[string]any) (*tools.Output, error) {
	selector, _ := args["selector"].(string)
	text, _ := args["text"].(string)
	result, err := t.browser.Type(selector, text)
	if err != nil {
		return nil, err
	}
	return tools.JSONOutput(map[string]any{
		"success": result.Success,
		"message": result.Message,
	}), nil
}

func (t *Tools) status(_ context.Context, _ map[string]any) (*tools.Output, error) {
	browserState := map[string]any{"running": t.browser.Running()}
	if info, err := t.browser.PageInfo(); err == nil {
		browserState["title"] = info.Title
		browserState["url"] = info.URL
	}
	sessions := t.store.LoadSessions()
	return tools.JSONOutput(map[string]any{
		"browser":  browserState,
		"facebook": sessions["facebook"],
		"google":   sessions["google"],
	}), nil
}
