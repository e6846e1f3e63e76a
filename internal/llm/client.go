// Package llm recognizes page text with a vision model served through the
// OpenRouter chat-completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spherical/pdf2text/internal/domain"
	"github.com/spherical/pdf2text/internal/observability"
)

const (
	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultModel  = "google/gemini-2.5-flash-preview-09-2025"

	// Name is the engine identifier used in cache keys and logs.
	Name = "vision"
)

// Client handles communication with OpenRouter API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	retry      *RetryConfig
	logger     *observability.Logger
}

// Message represents a chat message
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content (text or image)
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents an image URL in the message
type ImageURL struct {
	URL string `json:"url"`
}

// Request represents the API request structure
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

// Response represents the API response structure
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// Choice represents a single completion choice
type Choice struct {
	Message      Delta  `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// Delta represents the assistant message of a choice
type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// Config holds client settings. Empty fields fall back to defaults.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Retry   *RetryConfig
	Logger  *observability.Logger
}

// NewClient creates a new LLM client
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Retry == nil {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.Nop()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      cfg.Retry,
		logger:     cfg.Logger.WithComponent("llm"),
	}
}

func (c *Client) Name() string { return Name }

// Recognize sends the page image to the model and returns the transcription.
func (c *Client) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	req, err := c.buildRequest(img, language)
	if err != nil {
		return "", domain.NewError(domain.ErrorTypeOCREngine, "failed to build request", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("HTTP-Referer", "https://github.com/spherical/pdf2text")
		httpReq.Header.Set("X-Title", "pdf2text")

		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response %s has no choices", parsed.ID)
	}

	return cleanTranscription(parsed.Choices[0].Message.Content), nil
}

// buildRequest constructs the API request with the image
func (c *Client) buildRequest(img image.Image, language string) (*Request, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	msg := Message{
		Role: "user",
		Content: []ContentPart{
			{
				Type: "text",
				Text: buildPrompt(language),
			},
			{
				Type:     "image_url",
				ImageURL: &ImageURL{URL: imageURL},
			},
		},
	}

	return &Request{
		Model:    c.model,
		Messages: []Message{msg},
		Stream:   false,
	}, nil
}

// buildPrompt creates the transcription prompt
func buildPrompt(language string) string {
	return fmt.Sprintf(`You are an OCR engine. Transcribe all text visible in this scanned document page.

Rules:
- Output ONLY the transcribed text, with no preamble or commentary
- Keep the reading order and line breaks of the page
- Do not translate, summarize, or correct the text
- Do not use Markdown formatting
- If the page has no text, output nothing

Expected language profile (Tesseract codes): %s`, strings.Join(domain.SplitLanguages(language), ", "))
}

// cleanTranscription strips code fences that models sometimes add.
func cleanTranscription(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
