// Package facebook implements the Meta ads tools: browser login with token
// capture, ad account selection, and campaign/ad management over the Graph
// API. Everything created through these tools starts paused; only fb_publish
// activates spend.
package facebook

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ariahq/aria/pkg/browser"
	"github.com/ariahq/aria/pkg/logging"
	graph "github.com/ariahq/aria/pkg/platform/facebook"
	"github.com/ariahq/aria/pkg/store"
	"github.com/ariahq/aria/pkg/tools"
)

const (
	loginURL       = "https://www.facebook.com/login"
	oauthURLFormat = "https://www.facebook.com/dialog/oauth?client_id=%s&redirect_uri=https://www.facebook.com/connect/login_success.html&scope=ads_management,ads_read,business_management&response_type=token"

	loginSettleMs = 5000
	oauthSettleMs = 3000
	formSettleMs  = 2000
)

var accessTokenPattern = regexp.MustCompile(`access_token=([^&]+)`)

// ErrNoAdAccount is returned when a campaign tool runs before
// fb_set_ad_account.
var ErrNoAdAccount = errors.New("No ad account selected. Use fb_set_ad_account first.")

// TokenFromStore builds the graph client's token source: the token is read
// from the session store on every call, so a fresh login is picked up without
// restarting.
func TokenFromStore(st *store.Store) graph.TokenFunc {
	return func() (string, error) {
		record := st.Session("facebook")
		if record.Token == "" {
			return "", errors.New("Not logged in to Facebook. Use fb_login first.")
		}
		return record.Token, nil
	}
}

// Tools bundles the Facebook tool handlers around their shared dependencies.
type Tools struct {
	browser *browser.Manager
	store   *store.Store
	graph   *graph.Client
	appID   string
	httpc   *http.Client
	log     *logging.Logger
}

// New creates the Facebook tool set. appID is the OAuth client used to mint
// an ads-scoped token after browser login.
func New(b *browser.Manager, st *store.Store, client *graph.Client, appID string) *Tools {
	log, _ := logging.NewLogger("facebook")
	return &Tools{
		browser: b,
		store:   st,
		graph:   client,
		appID:   appID,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("fb_login", "Login to Facebook with email and password (saves session cookies)",
			tools.ObjectSchema(map[string]any{
				"email":    map[string]any{"type": "string", "description": "Facebook email or phone"},
				"password": map[string]any{"type": "string", "description": "Facebook password"},
			}, []string{"email", "password"}), t.login),

		tools.NewFunc("fb_check_login", "Check if logged in to Facebook",
			tools.ObjectSchema(nil, nil), t.checkLogin),

		tools.NewFunc("fb_list_ad_accounts", "List all Facebook ad accounts",
			tools.ObjectSchema(nil, nil), t.listAdAccounts),

		tools.NewFunc("fb_set_ad_account", "Select which Facebook ad account to use",
			tools.ObjectSchema(map[string]any{
				"account_id": map[string]any{"type": "string", "description": "Ad account ID (e.g., act_123456)"},
			}, []string{"account_id"}), t.setAdAccount),

		tools.NewFunc("fb_create_campaign", "Create a new Facebook ad campaign (starts paused)",
			tools.ObjectSchema(map[string]any{
				"name":      map[string]any{"type": "string", "description": "Campaign name"},
				"objective": map[string]any{"type": "string", "description": "Campaign objective: OUTCOME_TRAFFIC, OUTCOME_ENGAGEMENT, OUTCOME_LEADS, OUTCOME_SALES", "default": "OUTCOME_TRAFFIC"},
			}, []string{"name"}), t.createCampaign),

		tools.NewFunc("fb_create_ad", "Create a Facebook ad with targeting, image, and copy",
			tools.ObjectSchema(map[string]any{
				"campaign_id":  map[string]any{"type": "string", "description": "Facebook campaign ID"},
				"headline":     map[string]any{"type": "string", "description": "Ad headline"},
				"body":         map[string]any{"type": "string", "description": "Ad body text"},
				"image_url":    map[string]any{"type": "string", "description": "Image URL for the ad"},
				"target_url":   map[string]any{"type": "string", "description": "Landing page URL"},
				"daily_budget": map[string]any{"type": "number", "description": "Daily budget in USD"},
				"age_min":      map[string]any{"type": "number", "default": 18},
				"age_max":      map[string]any{"type": "number", "default": 65},
				"geo":          map[string]any{"type": "string", "description": "Target country code (e.g., IL)", "default": "IL"},
			}, []string{"campaign_id", "headline", "body", "target_url", "daily_budget"}), t.createAd),

		tools.NewFunc("fb_publish", "Activate/publish a paused Facebook campaign",
			tools.ObjectSchema(map[string]any{
				"campaign_id": map[string]any{"type": "string", "description": "Campaign ID to activate"},
			}, []string{"campaign_id"}), t.publish),

		tools.NewFunc("fb_get_metrics", "Get performance metrics for a Facebook campaign",
			tools.ObjectSchema(map[string]any{
				"campaign_id": map[string]any{"type": "string", "description": "Campaign ID to get metrics for"},
			}, []string{"campaign_id"}), t.getMetrics),
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

	t.log.Infof("navigating to facebook login")
	if _, err := t.browser.Navigate(loginURL); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(formSettleMs)

	if result, err := t.browser.Type("#email", input.Email); err != nil {
		return nil, err
	} else if !result.Success {
		return nil, fmt.Errorf("fill email field: %s", result.Message)
	}
	if result, err := t.browser.Type("#pass", input.Password); err != nil {
		return nil, err
	} else if !result.Success {
		return nil, fmt.Errorf("fill password field: %s", result.Message)
	}
	if _, err := t.browser.Click(`button[name="login"]`); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(loginSettleMs)

	info, err := t.browser.PageInfo()
	if err != nil {
		return nil, err
	}

	// Still on a login or checkpoint page: 2FA, captcha, or bad credentials.
	// The screenshot tells the operator which.
	if strings.Contains(info.URL, "login") || strings.Contains(info.URL, "checkpoint") {
		img, _ := t.browser.Screenshot()
		return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
			"success": false,
			"message": "Login may require 2FA or failed. Check the screenshot.",
			"url":     info.URL,
		}), nil
	}

	t.log.Infof("login successful, extracting token")
	if err := t.browser.SaveAuthState(); err != nil {
		t.log.Warnf("save auth state: %v", err)
	}

	// Mint an ads-scoped user token through the OAuth implicit flow; the
	// token lands in the redirect URL fragment.
	if _, err := t.browser.Navigate(fmt.Sprintf(oauthURLFormat, t.appID)); err != nil {
		return nil, err
	}
	_ = t.browser.Wait(oauthSettleMs)

	tokenInfo, err := t.browser.PageInfo()
	if err != nil {
		return nil, err
	}
	if match := accessTokenPattern.FindStringSubmatch(tokenInfo.URL); match != nil {
		token, err := url.QueryUnescape(match[1])
		if err != nil {
			token = match[1]
		}
		if err := t.store.UpdateSession("facebook", store.Update{
			LoggedIn: store.Bool(true),
			Email:    store.String(input.Email),
			Token:    store.String(token),
		}); err != nil {
			return nil, err
		}
		if err := t.browser.SaveAuthState(); err != nil {
			t.log.Warnf("save auth state: %v", err)
		}
		return tools.JSONOutput(map[string]any{
			"success":   true,
			"message":   "Logged in to Facebook successfully!",
			"email":     input.Email,
			"has_token": true,
		}), nil
	}

	// Logged in but the app was not authorized for ads access; record the
	// login so cookie-based tools still work.
	if err := t.store.UpdateSession("facebook", store.Update{
		LoggedIn: store.Bool(true),
		Email:    store.String(input.Email),
	}); err != nil {
		return nil, err
	}
	if err := t.browser.SaveAuthState(); err != nil {
		t.log.Warnf("save auth state: %v", err)
	}

	img, _ := t.browser.Screenshot()
	return tools.ImageWithJSON(img, "image/jpeg", map[string]any{
		"success":   true,
		"message":   "Logged in to Facebook. May need to authorize app for ads access.",
		"email":     input.Email,
		"has_token": false,
	}), nil
}

func (t *Tools) checkLogin(_ context.Context, _ map[string]any) (*tools.Output, error) {
	record := t.store.Session("facebook")
	return tools.JSONOutput(map[string]any{
		"logged_in":     record.LoggedIn,
		"email":         record.Email,
		"ad_account_id": record.AdAccountID,
		"has_token":     record.Token != "",
	}), nil
}

func (t *Tools) listAdAccounts(ctx context.Context, _ map[string]any) (*tools.Output, error) {
	params := url.Values{}
	params.Set("fields", "id,account_id,name,currency,timezone_name,account_status")
	result, err := t.graph.Get(ctx, "/me/adaccounts", params)
	if err != nil {
		return nil, err
	}
	accounts, _ := result["data"].([]any)
	return tools.JSONOutput(map[string]any{
		"accounts": accounts,
		"count":    len(accounts),
	}), nil
}

func (t *Tools) setAdAccount(_ context.Context, args map[string]any) (*tools.Output, error) {
	accountID, _ := args["account_id"].(string)
	if err := t.store.UpdateSession("facebook", store.Update{
		AdAccountID: store.String(accountID),
	}); err != nil {
		return nil, err
	}
	return tools.JSONOutput(map[string]any{
		"success":       true,
		"ad_account_id": accountID,
	}), nil
}

func (t *Tools) adAccountID() (string, error) {
	record := t.store.Session("facebook")
	if record.AdAccountID == "" {
		return "", ErrNoAdAccount
	}
	return record.AdAccountID, nil
}

func (t *Tools) createCampaign(ctx context.Context, args map[string]any) (*tools.Output, error) {
	var input struct {
		Name      string `json:"name"`
		Objective string `json:"objective"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	accountID, err := t.adAccountID()
	if err != nil {
		return nil, err
	}

	result, err := t.graph.Post(ctx, "/"+accountID+"/campaigns", map[string]any{
		"name":                  input.Name,
		"objective":             input.Objective,
		"status":                "PAUSED",
		"special_ad_categories": []string{},
	})
	if err != nil {
		return nil, err
	}

	return tools.JSONOutput(map[string]any{
		"campaign_id": result["id"],
		"name":        input.Name,
		"status":      "PAUSED",
	}), nil
}

func (t *Tools) createAd(ctx context.Context, args map[string]any) (*tools.Output, error) {
	var input struct {
		CampaignID  string  `json:"campaign_id"`
		Headline    string  `json:"headline"`
		Body        string  `json:"body"`
		ImageURL    string  `json:"image_url"`
		TargetURL   string  `json:"target_url"`
		DailyBudget float64 `json:"daily_budget"`
		AgeMin      int     `json:"age_min"`
		AgeMax      int     `json:"age_max"`
		Geo         string  `json:"geo"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	accountID, err := t.adAccountID()
	if err != nil {
		return nil, err
	}

	adSet, err := t.graph.Post(ctx, "/"+accountID+"/adsets", map[string]any{
		"name":              input.Headline + " - Ad Set",
		"campaign_id":       input.CampaignID,
		"daily_budget":      int(input.DailyBudget * 100),
		"billing_event":     "IMPRESSIONS",
		"optimization_goal": "LINK_CLICKS",
		"targeting": map[string]any{
			"geo_locations": map[string]any{"countries": []string{input.Geo}},
			"age_min":       input.AgeMin,
			"age_max":       input.AgeMax,
		},
		"status": "PAUSED",
	})
	if err != nil {
		return nil, err
	}

	// A broken image must not sink the ad; create it without one.
	imageHash := ""
	if input.ImageURL != "" {
		imageHash, err = t.uploadImage(ctx, accountID, input.ImageURL)
		if err != nil {
			t.log.Warnf("image upload failed, continuing without image: %v", err)
			imageHash = ""
		}
	}

	linkData := map[string]any{
		"link":    input.TargetURL,
		"message": input.Body,
		"name":    input.Headline,
		"call_to_action": map[string]any{
			"type":  "LEARN_MORE",
			"value": map[string]any{"link": input.TargetURL},
		},
	}
	if imageHash != "" {
		linkData["image_hash"] = imageHash
	}

	ad, err := t.graph.Post(ctx, "/"+accountID+"/ads", map[string]any{
		"name":     input.Headline,
		"adset_id": adSet["id"],
		"creative": map[string]any{
			"name":              input.Headline + " - Creative",
			"object_story_spec": map[string]any{"link_data": linkData},
		},
		"status": "PAUSED",
	})
	if err != nil {
		return nil, err
	}

	return tools.JSONOutput(map[string]any{
		"ad_id":       ad["id"],
		"adset_id":    adSet["id"],
		"campaign_id": input.CampaignID,
		"status":      "PAUSED",
	}), nil
}

// uploadImage fetches the image and registers it with the ad account,
// returning the image hash to reference from a creative.
func (t *Tools) uploadImage(ctx context.Context, accountID, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	resp, err := t.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	result, err := t.graph.Post(ctx, "/"+accountID+"/adimages", map[string]any{
		"bytes": base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return "", err
	}

	images, _ := result["images"].(map[string]any)
	keys := make([]string, 0, len(images))
	for k := range images {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if entry, ok := images[key].(map[string]any); ok {
			if hash, ok := entry["hash"].(string); ok && hash != "" {
				return hash, nil
			}
		}
	}
	return "", fmt.Errorf("no image hash in upload response")
}

func (t *Tools) publish(ctx context.Context, args map[string]any) (*tools.Output, error) {
	campaignID, _ := args["campaign_id"].(string)
	if _, err := t.graph.Post(ctx, "/"+campaignID, map[string]any{"status": "ACTIVE"}); err != nil {
		return nil, err
	}
	return tools.JSONOutput(map[string]any{
		"success":     true,
		"campaign_id": campaignID,
		"status":      "ACTIVE",
	}), nil
}

func (t *Tools) getMetrics(ctx context.Context, args map[string]any) (*tools.Output, error) {
	campaignID, _ := args["campaign_id"].(string)
	params := url.Values{}
	params.Set("fields", "impressions,clicks,spend,cpc,ctr,reach,frequency,actions")
	params.Set("date_preset", "last_7d")

	result, err := t.graph.Get(ctx, "/"+campaignID+"/insights", params)
	if err != nil {
		// Metrics are best-effort: a campaign with no delivery yet is a
		// normal state, reported inline rather than as a failure.
		return tools.JSONOutput(map[string]any{
			"campaign_id": campaignID,
			"error":       err.Error(),
			"insights":    []any{},
		}), nil
	}

	insights, _ := result["data"].([]any)
	if insights == nil {
		insights = []any{}
	}
	return tools.JSONOutput(map[string]any{
		"campaign_id": campaignID,
		"insights":    insights,
		"period":      "last_7d",
	}), nil
}
