package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	airerrors "github.com/randalmurphal/airlex/pkg/airlex/errors"
)

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Name implements Caller.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Call implements Caller.
func (c *GeminiClient) Call(ctx context.Context, prompt, model string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return "", translateGeminiError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}
	return text, nil
}

// translateGeminiError maps SDK errors onto the categorizable error
// types. Quota exhaustion sometimes arrives with a RESOURCE_EXHAUSTED
// status instead of a 429 code; treat both as rate limiting.
func translateGeminiError(err error) error {
	// The SDK returns APIError by value, not pointer.
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini call: %w", err)
	}

	status := apiErr.Code
	if status == 0 && strings.Contains(strings.ToLower(apiErr.Status), "resource_exhausted") {
		status = http.StatusTooManyRequests
	}
	return &airerrors.HTTPError{
		StatusCode: status,
		Message:    apiErr.Message,
		Endpoint:   "gemini generate content",
	}
}

// Close implements the optional closer contract provider clients share.
// The SDK client holds no resources that need explicit release.
func (c *GeminiClient) Close() error {
	return nil
}
