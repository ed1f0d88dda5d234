// Package campaigns implements campaign-brief CRUD against the managed
// database. Briefs are the durable record of what a campaign is about; the
// platform tools reference them when assembling ads.
package campaigns

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/ariahq/aria/pkg/db/supabase"
	"github.com/ariahq/aria/pkg/tools"
)

const table = "campaigns"

// ErrNotConfigured is returned per call when no database client is wired.
var ErrNotConfigured = errors.New("Supabase not configured. Set SUPABASE_URL and SUPABASE_KEY in .env")

// briefFields are the columns a create call may populate, in table order.
var briefFields = []string{"brand_name", "industry", "offer", "tone", "objective", "platforms", "budget", "website", "city"}

// Tools bundles the campaign CRUD handlers. db may be nil when the database
// is not configured; every handler then reports it.
type Tools struct {
	db *supabase.Client
}

// New creates the campaign tool set.
func New(db *supabase.Client) *Tools {
	return &Tools{db: db}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("create_campaign", "Create a new campaign brief in the database",
			tools.ObjectSchema(map[string]any{
				"brand_name": map[string]any{"type": "string", "description": "Brand/business name"},
				"industry":   map[string]any{"type": "string", "description": "Business industry"},
				"offer":      map[string]any{"type": "string", "description": "What is being promoted"},
				"tone":       map[string]any{"type": "string", "default": "professional"},
				"objective":  map[string]any{"type": "string", "default": "TRAFFIC"},
				"platforms":  map[string]any{"type": "array", "default": []any{"meta"}},
				"budget":     map[string]any{"type": "number", "description": "Monthly budget in USD"},
				"website":    map[string]any{"type": "string", "description": "Website URL"},
				"city":       map[string]any{"type": "string"},
			}, []string{"brand_name", "industry", "offer"}), t.create),

		tools.NewFunc("list_campaigns", "List all campaigns",
			tools.ObjectSchema(map[string]any{
				"limit":  map[string]any{"type": "number", "default": 20},
				"status": map[string]any{"type": "string", "description": "Filter by status"},
			}, nil), t.list),

		tools.NewFunc("get_campaign", "Get full details of a campaign",
			tools.ObjectSchema(map[string]any{
				"id": map[string]any{"type": "string", "description": "Campaign UUID"},
			}, []string{"id"}), t.get),

		tools.NewFunc("update_campaign", "Update campaign fields",
			tools.ObjectSchema(map[string]any{
				"id":      map[string]any{"type": "string", "description": "Campaign UUID"},
				"updates": map[string]any{"type": "object", "description": `Fields to update (e.g., { "status": "active", "budget": 500 })`},
			}, []string{"id", "updates"}), t.update),

		tools.NewFunc("delete_campaign", "Delete a campaign",
			tools.ObjectSchema(map[string]any{
				"id": map[string]any{"type": "string", "description": "Campaign UUID to delete"},
			}, []string{"id"}), t.delete),
	}
}

func (t *Tools) requireDB() error {
	if t.db == nil {
		return ErrNotConfigured
	}
	return nil
}

func (t *Tools) create(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireDB(); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(briefFields))
	for _, field := range briefFields {
		if value, ok := args[field]; ok {
			row[field] = value
		}
	}

	rows, err := t.db.Insert(ctx, table, row)
	if err != nil {
		return nil, err
	}
	var created any
	if len(rows) > 0 {
		created = rows[0]
	}
	return tools.JSONOutput(map[string]any{
		"campaign": created,
		"message":  "Campaign created successfully",
	}), nil
}

func (t *Tools) list(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireDB(); err != nil {
		return nil, err
	}

	limit := 20
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}
	if v, ok := args["limit"].(int); ok && v > 0 {
		limit = v
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "created_at.desc")
	query.Set("limit", strconv.Itoa(limit))
	if status, ok := args["status"].(string); ok && status != "" {
		query.Set("status", "eq."+status)
	}

	rows, err := t.db.Select(ctx, table, query)
	if err != nil {
		return nil, err
	}
	return tools.JSONOutput(map[string]any{
		"campaigns": rows,
		"count":     len(rows),
	}), nil
}

func (t *Tools) get(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireDB(); err != nil {
		return nil, err
	}
	id, _ := args["id"].(string)

	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("select", "*")
	rows, err := t.db.Select(ctx, table, query)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("Campaign not found: %s", id)
	}
	return tools.JSONOutput(map[string]any{"campaign": rows[0]}), nil
}

func (t *Tools) update(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireDB(); err != nil {
		return nil, err
	}
	id, _ := args["id"].(string)
	updates, _ := args["updates"].(map[string]any)
	if len(updates) == 0 {
		return nil, fmt.Errorf("updates must contain at least one field")
	}

	query := url.Values{}
	query.Set("id", "eq."+id)
	if err := t.db.Update(ctx, table, query, updates); err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return tools.JSONOutput(map[string]any{
		"success":        true,
		"id":             id,
		"updated_fields": fields,
	}), nil
}

func (t *Tools) delete(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireDB(); err != nil {
		return nil, err
	}
	id, _ := args["id"].(string)

	query := url.Values{}
	query.Set("id", "eq."+id)
	if err := t.db.Delete(ctx, table, query); err != nil {
		return nil, err
	}
	return tools.JSONOutput(map[string]any{
		"success": true,
		"id":      id,
		"message": "Campaign deleted",
	}), nil
}
