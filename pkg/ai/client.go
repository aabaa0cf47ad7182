// Package ai is a small client for the Gemini generateContent REST API.
// It turns prompts into text; callers own what the text is used for,
// and no engine state ever depends on a response.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultModel is used when the configuration names no model.
	DefaultModel = "gemini-1.5-flash"

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	requestTimeout = 30 * time.Second

	// apiKeyEnv is the environment variable holding the API key. A
	// KEY=value line in a local .env file is accepted as a fallback.
	apiKeyEnv  = "GEMINI_API_KEY"
	envFile    = ".env"
	maxRespLen = 1 << 20
)

// ErrNoAPIKey is returned when no API key can be found in the
// environment or the local .env file.
var ErrNoAPIKey = errors.New("ai: no API key (set " + apiKeyEnv + ")")

// Client calls the Gemini generateContent endpoint.
type Client struct {
	// HTTPClient defaults to one with a 30 second timeout.
	HTTPClient *http.Client
	// BaseURL defaults to the public Gemini endpoint. Tests point it
	// at a local server.
	BaseURL string
	// Model is the model name in the request path.
	Model string

	apiKey string
}

// NewClient builds a client for the given key and model. An empty
// model selects DefaultModel.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: requestTimeout},
		BaseURL:    defaultBaseURL,
		Model:      model,
		apiKey:     apiKey,
	}
}

// NewFromEnv builds a client with the API key taken from the
// environment or, failing that, a GEMINI_API_KEY= line in ./.env.
func NewFromEnv(model string) (*Client, error) {
	key, err := apiKeyFromEnv()
	if err != nil {
		return nil, err
	}
	return NewClient(key, model), nil
}

func apiKeyFromEnv() (string, error) {
	if key := strings.TrimSpace(os.Getenv(apiKeyEnv)); key != "" {
		return key, nil
	}
	data, err := os.ReadFile(envFile)
	if err != nil {
		return "", ErrNoAPIKey
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, apiKeyEnv+"="); ok {
			if key := strings.TrimSpace(rest); key != "" {
				return key, nil
			}
		}
	}
	return "", ErrNoAPIKey
}

type generateRequest struct {
	Contents         []reqContent     `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type reqContent struct {
	Parts []reqPart `json:"parts"`
}

type reqPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content reqContent `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Generate sends a single prompt and returns the model's text,
// trimmed. Transport failures, non-2xx statuses, in-band API errors
// and empty candidate lists all surface as errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []reqContent{{Parts: []reqPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 4096,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRespLen))
	if err != nil {
		return "", fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ai: API error: %s - %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("ai: API error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("ai: empty response")
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.New("ai: empty response")
	}
	return text, nil
}
