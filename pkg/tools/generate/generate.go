// Package generate implements the AI generation tools: ad copy variants,
// campaign images, and free-text brief parsing. Copy and briefs go through
// the Gemini adapter; images are deterministic URLs against a generation
// service, no API key needed.
package generate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"github.com/ariahq/aria/pkg/llm/gemini"
	"github.com/ariahq/aria/pkg/logging"
	"github.com/ariahq/aria/pkg/tools"
)

const imageBaseURL = "https://image.pollinations.ai/prompt/"

// ErrNotConfigured is returned per call when no Gemini client is wired.
var ErrNotConfigured = errors.New("GEMINI_API_KEY not configured. Set it in your .env file.")

// Generator produces text from a prompt. Satisfied by *gemini.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string, params gemini.Params) (string, error)
}

// Tools bundles the generation handlers. gen may be nil when Gemini is not
// configured; the copy and brief tools then report it, image generation
// still works.
type Tools struct {
	gen Generator
	log *logging.Logger
}

// New creates the generation tool set.
func New(gen Generator) *Tools {
	log, _ := logging.NewLogger("generate")
	return &Tools{gen: gen, log: log}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("generate_variants", "Generate ad copy variants using Gemini AI for multiple platforms",
			tools.ObjectSchema(map[string]any{
				"brand_name": map[string]any{"type": "string", "description": "Brand/business name"},
				"industry":   map[string]any{"type": "string", "description": "Business industry"},
				"offer":      map[string]any{"type": "string", "description": "What you are offering/promoting"},
				"tone":       map[string]any{"type": "string", "description": "Tone: professional, casual, funny, urgent", "default": "professional"},
				"platforms":  map[string]any{"type": "array", "description": "Target platforms: meta, google, tiktok, linkedin, twitter", "default": []any{"meta"}},
				"language":   map[string]any{"type": "string", "description": "Language: he, en", "default": "he"},
				"city":       map[string]any{"type": "string", "description": "Target city/location"},
				"objective":  map[string]any{"type": "string", "description": "Campaign goal: traffic, conversions, leads, brand_awareness", "default": "traffic"},
			}, []string{"brand_name", "industry", "offer"}), t.variants),

		tools.NewFunc("generate_images", "Generate campaign images with AI",
			tools.ObjectSchema(map[string]any{
				"prompt": map[string]any{"type": "string", "description": "Image description/prompt"},
				"style":  map[string]any{"type": "string", "description": "Style: photo, illustration, 3d, minimal", "default": "photo"},
				"count":  map[string]any{"type": "number", "description": "Number of images to generate", "default": 1},
			}, []string{"prompt"}), t.images),

		tools.NewFunc("parse_brief", "Parse free-text into a structured campaign brief using AI",
			tools.ObjectSchema(map[string]any{
				"text": map[string]any{"type": "string", "description": "Free-text campaign brief from the user"},
			}, []string{"text"}), t.parseBrief),
	}
}

func (t *Tools) requireGenerator() error {
	if t.gen == nil {
		return ErrNotConfigured
	}
	return nil
}

func (t *Tools) variants(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireGenerator(); err != nil {
		return nil, err
	}

	var input struct {
		BrandName string   `json:"brand_name"`
		Industry  string   `json:"industry"`
		Offer     string   `json:"offer"`
		Tone      string   `json:"tone"`
		Platforms []string `json:"platforms"`
		Language  string   `json:"language"`
		City      string   `json:"city"`
		Objective string   `json:"objective"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	t.log.Infof("generating variants for %s", input.BrandName)
	response, err := t.gen.Generate(ctx, variantsPrompt(
		input.BrandName, input.Industry, input.City, input.Offer,
		input.Tone, input.Objective, input.Language, input.Platforms,
	), gemini.Params{})
	if err != nil {
		return nil, err
	}

	var result struct {
		Variants []map[string]any `json:"variants"`
	}
	if err := gemini.DecodeJSON(response, &result); err != nil {
		return nil, err
	}
	if result.Variants == nil {
		result.Variants = []map[string]any{}
	}

	return tools.JSONOutput(map[string]any{
		"brand_name": input.BrandName,
		"platforms":  input.Platforms,
		"variants":   result.Variants,
		"count":      len(result.Variants),
	}), nil
}

func variantsPrompt(brand, industry, city, offer, tone, objective, language string, platforms []string) string {
	var b strings.Builder
	b.WriteString("אתה מומחה בשיווק דיגיטלי וכתיבה קריאטיבית לפרסומות.\n")
	b.WriteString("צור 2-3 וריאציות מודעות מקצועיות עבור כל פלטפורמה.\n\n")
	b.WriteString("פרטי הקמפיין:\n")
	fmt.Fprintf(&b, "- שם המותג: %s\n", brand)
	fmt.Fprintf(&b, "- תחום: %s\n", industry)
	if city != "" {
		fmt.Fprintf(&b, "- מיקום: %s\n", city)
	}
	fmt.Fprintf(&b, "- מבצע/הצעה: %s\n", offer)
	fmt.Fprintf(&b, "- טון: %s\n", tone)
	fmt.Fprintf(&b, "- מטרה: %s\n", objective)
	fmt.Fprintf(&b, "- פלטפורמות: %s\n", strings.Join(platforms, ", "))
	if language == "he" {
		b.WriteString("- שפה: עברית\n")
	} else {
		b.WriteString("- שפה: English\n")
	}
	b.WriteString(`
עבור כל וריאציה החזר JSON:
{
  "variants": [
    {
      "platform": "meta",
      "primary_text": "טקסט ראשי (עד 150 מילים)",
      "headline": "כותרת (עד 7 מילים)",
      "description": "תיאור (עד 15 מילים)",
      "cta": "LEARN_MORE / BOOK_NOW / SHOP_NOW",
      "audience_suggestion": "המלצה לקהל יעד"
    }
  ]
}

החזר רק JSON תקין.`)
	return b.String()
}

func (t *Tools) images(_ context.Context, args map[string]any) (*tools.Output, error) {
	var input struct {
		Prompt string  `json:"prompt"`
		Style  string  `json:"style"`
		Count  float64 `json:"count"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}
	count := int(input.Count)
	if count < 1 {
		count = 1
	}

	fullPrompt := fmt.Sprintf("%s, %s style, high quality, professional advertising", input.Prompt, input.Style)
	encoded := url.PathEscape(fullPrompt)

	images := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		seed := rand.Intn(10000)
		images = append(images, map[string]any{
			"url":        fmt.Sprintf("%s%s?width=1200&height=628&seed=%d", imageBaseURL, encoded, seed),
			"prompt":     input.Prompt,
			"style":      input.Style,
			"dimensions": "1200x628",
		})
	}
	return tools.JSONOutput(map[string]any{
		"images": images,
		"count":  len(images),
	}), nil
}

func (t *Tools) parseBrief(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if err := t.requireGenerator(); err != nil {
		return nil, err
	}
	text, _ := args["text"].(string)

	t.log.Infof("parsing brief")
	response, err := t.gen.Generate(ctx, briefPrompt(text), gemini.Params{})
	if err != nil {
		return nil, err
	}

	var brief map[string]any
	if err := gemini.DecodeJSON(response, &brief); err != nil {
		return nil, err
	}
	return tools.JSONOutput(map[string]any{
		"brief":    brief,
		"raw_text": text,
	}), nil
}

func briefPrompt(text string) string {
	return fmt.Sprintf(`אתה עוזר AI שממיר טקסט חופשי לבריף קמפיין מובנה.

הטקסט מהמשתמש:
%q

החזר JSON מובנה:
{
  "brand_name": "שם המותג/עסק",
  "industry": "תחום עיסוק",
  "city": "עיר/מיקום או null",
  "offer": "מה המבצע/הצעה",
  "tone": "professional/casual/funny/urgent",
  "objective": "traffic/conversions/leads/brand_awareness",
  "platforms": ["meta", "google"],
  "budget": null,
  "language": "he"
}

החזר רק JSON תקין.`, text)
}
