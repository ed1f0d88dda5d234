// Package gemini adapts the Gemini API for the generation tools. All prompts
// go through one text-in text-out call; callers that expect structured output
// parse it with ExtractJSON.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultModel = "gemini-pro"

// ErrNotConfigured is returned by the constructor when no API key is set.
var ErrNotConfigured = fmt.Errorf("gemini is not configured: set GEMINI_API_KEY")

// Params tunes a single generation call. Zero values fall back to the
// defaults used for ad-copy generation.
type Params struct {
	Temperature     float32
	MaxOutputTokens int32
}

func (p Params) withDefaults() Params {
	if p.Temperature == 0 {
		p.Temperature = 0.9
	}
	if p.MaxOutputTokens == 0 {
		p.MaxOutputTokens = 4096
	}
	return p
}

// Client generates text with a fixed model and safety posture.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds a Gemini client from an API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: defaultModel}, nil
}

// Generate runs one prompt and returns the model's text. Harmful-content
// categories are blocked at medium-and-above across the board.
func (c *Client) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	params = params.withDefaults()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](params.Temperature),
		TopK:            genai.Ptr[float32](1),
		TopP:            genai.Ptr[float32](1),
		MaxOutputTokens: params.MaxOutputTokens,
		SafetySettings:  safetySettings(),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text candidates")
	}
	return text, nil
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}
