// Package landing implements landing page generation and publishing. Pages
// are generated as a single self-contained HTML document and stored under the
// local store directory.
package landing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ariahq/aria/pkg/llm/gemini"
	"github.com/ariahq/aria/pkg/logging"
	"github.com/ariahq/aria/pkg/store"
	"github.com/ariahq/aria/pkg/tools"
)

// Page generation needs more room and less randomness than ad copy.
const (
	pageTemperature     = 0.7
	pageMaxOutputTokens = 8192
)

// ErrNotConfigured is returned per call when no Gemini client is wired.
var ErrNotConfigured = errors.New("GEMINI_API_KEY not configured. Set it in your .env file.")

var filenameSeparators = regexp.MustCompile(`\s+`)

// Generator produces text from a prompt. Satisfied by *gemini.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string, params gemini.Params) (string, error)
}

// Tools bundles the landing page handlers.
type Tools struct {
	gen   Generator
	store *store.Store
	log   *logging.Logger
	now   func() time.Time
}

// New creates the landing page tool set.
func New(gen Generator, st *store.Store) *Tools {
	log, _ := logging.NewLogger("landing")
	return &Tools{gen: gen, store: st, log: log, now: time.Now}
}

// All returns the tools in registration order.
func (t *Tools) All() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc("create_landing_page", "Generate a complete landing page with AI",
			tools.ObjectSchema(map[string]any{
				"brand_name":  map[string]any{"type": "string", "description": "Brand/business name"},
				"headline":    map[string]any{"type": "string", "description": "Main headline"},
				"description": map[string]any{"type": "string", "description": "Page description/offer"},
				"cta_text":    map[string]any{"type": "string", "description": "Call to action button text", "default": "צרו קשר"},
				"cta_url":     map[string]any{"type": "string", "description": "CTA button URL"},
				"phone":       map[string]any{"type": "string", "description": "Business phone number"},
				"color":       map[string]any{"type": "string", "description": "Primary color hex", "default": "#6366f1"},
				"language":    map[string]any{"type": "string", "description": "Language: he, en", "default": "he"},
			}, []string{"brand_name", "headline", "description"}), t.create),

		tools.NewFunc("publish_landing_page", "Publish/deploy a landing page",
			tools.ObjectSchema(map[string]any{
				"filename":    map[string]any{"type": "string", "description": "Landing page filename to publish"},
				"destination": map[string]any{"type": "string", "description": "Where to publish: local (default), or a URL", "default": "local"},
			}, []string{"filename"}), t.publish),
	}
}

func (t *Tools) create(ctx context.Context, args map[string]any) (*tools.Output, error) {
	if t.gen == nil {
		return nil, ErrNotConfigured
	}

	var input struct {
		BrandName   string `json:"brand_name"`
		Headline    string `json:"headline"`
		Description string `json:"description"`
		CTAText     string `json:"cta_text"`
		Phone       string `json:"phone"`
		Color       string `json:"color"`
		Language    string `json:"language"`
	}
	if err := tools.DecodeArgs(args, &input); err != nil {
		return nil, err
	}

	t.log.Infof("generating landing page for %s", input.BrandName)
	raw, err := t.gen.Generate(ctx, pagePrompt(input.BrandName, input.Headline, input.Description,
		input.CTAText, input.Color, input.Language, input.Phone), gemini.Params{
		Temperature:     pageTemperature,
		MaxOutputTokens: pageMaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	page := gemini.StripHTMLFence(raw)
	title := documentTitle(page)

	dir, err := t.store.LandingPagesDir()
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s-%d.html",
		strings.ToLower(filenameSeparators.ReplaceAllString(input.BrandName, "-")),
		t.now().UnixMilli())
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return nil, fmt.Errorf("write landing page: %w", err)
	}

	return tools.JSONOutput(map[string]any{
		"success":     true,
		"filename":    filename,
		"filepath":    path,
		"brand_name":  input.BrandName,
		"headline":    input.Headline,
		"title":       title,
		"html_length": len(page),
		"message":     "Landing page created: " + filename,
	}), nil
}

func pagePrompt(brand, headline, description, ctaText, color, language, phone string) string {
	var b strings.Builder
	b.WriteString("צור דף נחיתה HTML מלא ומקצועי עבור:\n")
	fmt.Fprintf(&b, "- שם העסק: %s\n", brand)
	fmt.Fprintf(&b, "- כותרת: %s\n", headline)
	fmt.Fprintf(&b, "- תיאור: %s\n", description)
	fmt.Fprintf(&b, "- כפתור CTA: %s\n", ctaText)
	fmt.Fprintf(&b, "- צבע ראשי: %s\n", color)
	if language == "he" {
		b.WriteString("- שפה: עברית (RTL)\n")
	} else {
		b.WriteString("- שפה: English (LTR)\n")
	}
	if phone != "" {
		fmt.Fprintf(&b, "- טלפון: %s\n", phone)
	}
	b.WriteString(`
הדרישות:
- HTML + CSS מובנים (inline styles)
- עיצוב מודרני, רספונסיבי
- אנימציות CSS
- Hero section עם כותרת וCTA
- סקשן יתרונות (3-4 יתרונות)
- סקשן CTA סופי
- פוטר

החזר רק את קוד ה-HTML המלא, ללא הסברים.`)
	return b.String()
}

// documentTitle parses the generated markup and returns its <title> text, or
// an empty string. The parser is lenient, so this never rejects a page.
func documentTitle(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

func (t *Tools) publish(_ context.Context, args map[string]any) (*tools.Output, error) {
	filename, _ := args["filename"].(string)
	// Reject anything that escapes the landing pages directory.
	if filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid filename: %s", filename)
	}

	dir, err := t.store.LandingPagesDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("Landing page not found: %s", filename)
	}

	return tools.JSONOutput(map[string]any{
		"success":  true,
		"filename": filename,
		"filepath": path,
		"message":  "Landing page ready at: " + path,
		"note":     "To serve: run a static file server pointing to the landing-pages directory.",
	}), nil
}
