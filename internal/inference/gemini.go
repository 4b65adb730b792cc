package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GENAI ANSWERER
// =============================================================================

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiAnswerer answers questions using Google's Gemini API.
type GeminiAnswerer struct {
	client *genai.Client
	model  string
}

// GeminiOption configures a GeminiAnswerer.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at a different API host.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = baseURL }
}

// WithGeminiHTTPClient sets the HTTP client used for API calls.
func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *genai.ClientConfig) { c.HTTPClient = hc }
}

// NewGeminiAnswerer creates a new Gemini answerer.
func NewGeminiAnswerer(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiAnswerer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiAnswerer{client: client, model: model}, nil
}

// Model returns the model name requests are sent to.
func (g *GeminiAnswerer) Model() string {
	return g.model
}

// Answer sends the image bytes followed by the question as one user turn.
func (g *GeminiAnswerer) Answer(ctx context.Context, img Image, question string) (string, error) {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(img.Data)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, mimeType),
		genai.NewPartFromText(question),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	answer := resp.Text()
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return answer, nil
}
