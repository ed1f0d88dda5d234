// Package googleads implements the Google Ads tools. There is no API token
// flow here: everything runs through the shared browser session, so campaign
// creation hands control back to the operator at the wizard with a screenshot.
package googleads

import (
	"context"
	"errors"
	"strings"

	"github.com/ariahq/aria/pkg/browser"
	"github.com/ariahq/aria/pkg/logging"
	"github.com/ariahq/aria/pkg/store"
	"github.com/ariahq/aria/pkg/tools"
)

const (
	adsHomeURL     = "https://ads.google.com"
	signinURL      = "https://accounts.google.com/signin/v2"
	newCampaignURL = "https://ads.google.com/aw/campaigns/new"
	campaignsURL   = "https://ads.google.com/aw/campaigns"

	// The next-button selectors cover the stable IDs plus localized fallbacks.
	emailNextSelector    = `#identifierNext, button:has-text("Next"), button:has-text("הבא")`
	passwordNextSelector = `#passwordNext, button:has-text("Next"), button:has-text("הבא")`

	formSettleMs     = 2000
	stepSettleMs     = 3000
	passwordSettleMs = 5000
)

// campaignRowsExpr scrapes the first campaign table on the page, row by row.
const campaignRowsExpr = `Array.from(document.querySelectorAll('table tbody tr')).slice(0, 20).map(row => Array.from(row.querySelectorAll('td')).map(c => (c.textContent || '').trim()))`

// ErrNotLoggedIn gates the campaign tools on a recorded login.
var ErrNotLoggedIn = errors.New("Not logged in to Google Ads. Use google_login first.")

// Tools bundles the Google Ads tool handlers around their shared dependencies.
type Tools struct {
	browser *browser.Manager
	store   *store.Store
	log     *logging.Logger
}

// New creates the Google Ads tool set.
func New(b *browser.Manager, st *store.Store) *Tools {
	log, _ := logging.NewLogger("google")
	return &Tools{browser: b, store: st, log: log}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("google_login", "Login to Google Ads via browser",
			tools.ObjectSchema(map[string]any{
				"email":    map[string]any{"type": "string", "description": "Google account email"},
				"password": map[string]any{"type": "string", "description": "Google account password"},
			}, []string{"email", "password"}), t.login),

		tools.NewFunc("google_check_login", "Check if logged in to Google Ads",
			tools.ObjectSchema(nil, nil), t.checkLogin),

		tools.NewFunc("google_create_campaign", "Create a new Google Ads campaign",
			tools.ObjectSchema(map[string]any{
				"campaign_name": map[string]any{"type": "string", "description": "Campaign name"},
				"campaign_type": map[string]any{"type": "string", "description": "Campaign type: search, display, shopping, video", "default": "search"},
				"daily_budget":  map[string]any{"type": "number", "description": "Daily budget in USD"},
				"keywords":      map[string]any{"type": "array", "description": "Target keywords for search campaigns"},
				"headlines":     map[string]any{"type": "array", "description": "Ad headlines (up to 15)"},
				"descriptions":  map[string]any{"type": "array", "description": "Ad descriptions (up to 4)"},
				"target_url":    map[string]any{"type": "string", "description": "Landing page URL"},
				"geo":           map[string]any{"type": "string", "description": "Target country", "default": "Israel"},
			}, []string{"campaign_name", "daily_budget", "target_url"}), t.createCampaign),

		tools.NewFunc("google_get_metrics", "Get Google Ads performance metrics",
			tools.ObjectSchema(map[string]any{
				"date_range": map[string]any{"type": "string", "description": "Date range: today, yesterday, last_7d, last_30d", "default": "last_7d"},
			}, nil), t.getMetrics),

		tools.NewFunc("google_list_campaigns", "List all Google Ads campaigns",
			tools.ObjectSchema(nil, nil), t.listCampaigns),
	}
}

func (t *Tools) login(_ context.Context, args map[string]any) (*tools.Output, error) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	t.log.Infof("navigating to google ads")
	info, err := t.browser.Navigate(adsHomeURL)
	if err != nil {
		return nil, err
	}
	_ = t.browser.Wait(formSettleMs)

	// An active session redirects straight into the account view.
	if strings.Contains(info.URL, "ads.google.com/aw") {
		if err := t.recordLogin(input.Email); err != nil {
			return nil, err
		}
		return tools.JSONOutput(map[string]any{
			"success": true,
			"message": "Already logged in to Google Ads",
			"email":   input.Email,
		}), nil
	}

	if _, err := t.browser.Navigate(signinURL); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(formSettleMs)

	if result, err := t.browser.Type(`input[type="email"]`, input.Email); err != nil {
		return nil, err
	} else if !result.Success {
		img, _ := t.browser.Screenshot()
		return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
			"success": false,
			"message": "Failed to enter email",
		}), nil
	}
	_, _ = t.browser.Click(emailNextSelector)
	_ = t.browser.Wait(stepSettleMs)

	if result, err := t.browser.Type(`input[type="password"]`, input.Password); err != nil {
		return nil, err
	} else if !result.Success {
		img, _ := t.browser.Screenshot()
		return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
			"success": false,
			"message": "Failed to enter password. May need 2FA.",
		}), nil
	}
	_, _ = t.browser.Click(passwordNextSelector)
	_ = t.browser.Wait(passwordSettleMs)

	info, err = t.browser.PageInfo()
	if err != nil {
		return nil, err
	}
	if strings.Contains(info.URL, "challenge") || strings.Contains(info.URL, "signin") {
		img, _ := t.browser.Screenshot()
		return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
			"success": false,
			"message": "Google requires additional verification (2FA). Check screenshot.",
			"url":     info.URL,
		}), nil
	}

	if _, err := t.browser.Navigate(adsHomeURL); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(stepSettleMs)

	if err := t.recordLogin(input.Email); err != nil {
		return nil, err
	}

	img, _ := t.browser.Screenshot()
	return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
		"success": true,
		"message": "Logged in to Google Ads",
		"email":   input.Email,
	}), nil
}

func (t *Tools) recordLogin(email string) error {
	if err := t.store.UpdateSession("google", store.Update{
		LoggedIn: store.Bool(true),
		Email:    store.String(email),
	}); err != nil {
		return err
	}
	if err := t.browser.SaveAuthState(); err != nil {
		t.log.Warnf("save auth state: %v", err)
	}
	return nil
}

func (t *Tools) checkLogin(_ context.Context, _ map[string]any) (*tools.Output, error) {
	record := t.store.Session("google")
	return tools.JSONOutput(map[string]any{
		"logged_in": record.LoggedIn,
		"email":     record.Email,
	}), nil
}

func (t *Tools) requireLogin() error {
	if !t.store.Session("google").LoggedIn {
		return ErrNotLoggedIn
	}
	return nil
}

func (t *Tools) createCampaign(_ context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireLogin(); err != nil {
		return nil, err
	}

	var input struct {
		CampaignName string  `json:"campaign_name"`
		CampaignType string  `json:"campaign_type"`
		DailyBudget  float64 `json:"daily_budget"`
		TargetURL    string  `json:"target_url"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	if _, err := t.browser.Navigate(newCampaignURL); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(stepSettleMs)

	img, err := t.browser.Screenshot()
	if err != nil {
		return nil, err
	}

	// The wizard is multi-step and changes often; hand it to the operator
	// with the generic browser tools instead of scripting it blind.
	return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
		"message":       "Google Ads campaign creation page loaded. The campaign wizard is complex and multi-step.",
		"campaign_name": input.CampaignName,
		"campaign_type": input.CampaignType,
		"daily_budget":  input.DailyBudget,
		"target_url":    input.TargetURL,
		"status":        "wizard_loaded",
		"note":          "Use browser_click and browser_type tools to navigate through the wizard steps.",
	}), nil
}

func (t *Tools) getMetrics(_ context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireLogin(); err != nil {
		return nil, err
	}
	dateRange, _ := args["date_range"].(string)

	if _, err := t.browser.Navigate(campaignsURL); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(stepSettleMs)

	img, err := t.browser.Screenshot()
	if err != nil {
		return nil, err
	}
	return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
		"message":    "Google Ads campaigns dashboard loaded.",
		"date_range": dateRange,
		"note":       "View the screenshot for campaign performance data.",
	}), nil
}

func (t *Tools) listCampaigns(_ context.Context, _ map[string]any) (*tools.Output, error) {
	if err := t.requireLogin(); err != nil {
		return nil, err
	}

	if _, err := t.browser.Navigate(campaignsURL); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(stepSettleMs)

	campaigns, err := t.browser.Evaluate(campaignRowsExpr)
	if err != nil {
		campaigns = []any{}
	}
	rows, _ := campaigns.([]any)

	img, err := t.browser.Screenshot()
	if err != nil {
		return nil, err
	}
	return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
		"campaigns_data": rows,
		"count":          len(rows),
	}), nil
}
