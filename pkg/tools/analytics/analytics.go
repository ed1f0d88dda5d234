// Package analytics implements the reporting tools: a cross-platform
// overview and a budget-level ROI report. Both read from the campaign
// database and tolerate it being unconfigured by reporting empty data.
package analytics

import (
	"context"
	"net/url"

	"github.com/ariahq/aria/pkg/db/supabase"
	"github.com/ariahq/aria/pkg/store"
	"github.com/ariahq/aria/pkg/tools"
)

const table = "campaigns"

// Tools bundles the analytics handlers. db may be nil.
type Tools struct {
	db    *supabase.Client
	store *store.Store
}

// New creates the analytics tool set.
func New(db *supabase.Client, st *store.Store) *Tools {
	return &Tools{db: db, store: st}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("get_analytics", "Get campaign analytics overview",
			tools.ObjectSchema(map[string]any{
				"period": map[string]any{"type": "string", "description": "Period: today, last_7d, last_30d, all_time", "default": "last_7d"},
			}, nil), t.overview),

		tools.NewFunc("get_roi_report", "Get ROI report for campaigns",
			tools.ObjectSchema(map[string]any{
				"campaign_id": map[string]any{"type": "string", "description": "Specific campaign ID, or omit for overview"},
			}, nil), t.roiReport),
	}
}

// query returns campaign rows, or nothing when the database is unreachable
// or unconfigured. Analytics degrade, they do not fail.
func (t *Tools) query(ctx context.Context, query url.Values) []map[string]any {
	if t.db == nil {
		return nil
	}
	rows, err := t.db.Select(ctx, table, query)
	if err != nil {
		return nil
	}
	return rows
}

func (t *Tools) overview(ctx context.Context, args map[string]any) (*tools.Output, error) {
	period, _ := args["period"].(string)

	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "created_at.desc")
	query.Set("limit", "50")
	campaigns := t.query(ctx, query)

	byStatus := map[string]int{"active": 0, "paused": 0, "draft": 0}
	for _, c := range campaigns {
		switch status, _ := c["status"].(string); status {
		case "active":
			byStatus["active"]++
		case "paused":
			byStatus["paused"]++
		default:
			byStatus["draft"]++
		}
	}

	recent := make([]map[string]any, 0, 5)
	for i, c := range campaigns {
		if i == 5 {
			break
		}
		recent = append(recent, map[string]any{
			"id":        c["id"],
			"brand":     c["brand_name"],
			"platforms": c["platforms"],
			"created":   c["created_at"],
		})
	}

	sessions := t.store.LoadSessions()
	return tools.JSONOutput(map[string]any{
		"period":          period,
		"total_campaigns": len(campaigns),
		"platforms": map[string]any{
			"facebook": map[string]any{"connected": sessions["facebook"].LoggedIn},
			"google":   map[string]any{"connected": sessions["google"].LoggedIn},
		},
		"campaigns_by_status": byStatus,
		"recent_campaigns":    recent,
	}), nil
}

func (t *Tools) roiReport(ctx context.Context, args map[string]any) (*tools.Output, error) {
	query := url.Values{}
	query.Set("select", "*")
	if campaignID, ok := args["campaign_id"].(string); ok && campaignID != "" {
		query.Set("id", "eq."+campaignID)
	} else {
		query.Set("order", "created_at.desc")
		query.Set("limit", "20")
	}
	campaigns := t.query(ctx, query)

	report := make([]map[string]any, 0, len(campaigns))
	totalBudget := 0.0
	for _, c := range campaigns {
		if budget, ok := c["budget"].(float64); ok {
			totalBudget += budget
		}
		report = append(report, map[string]any{
			"id":        c["id"],
			"brand":     c["brand_name"],
			"budget":    c["budget"],
			"platforms": c["platforms"],
			"objective": c["objective"],
			"created":   c["created_at"],
		})
	}

	return tools.JSONOutput(map[string]any{
		"report":       report,
		"total_budget": totalBudget,
		"count":        len(campaigns),
		"note":         "For real-time ROI metrics, use fb_get_metrics or google_get_metrics on specific campaigns.",
	}), nil
}
