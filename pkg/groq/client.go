package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// BaseURL is the Groq OpenAI-compatible API base URL.
	BaseURL = "https://api.groq.com/openai/v1"
)

// Client is a minimal HTTP client for the Groq chat-completions API. Calls
// are single request/response with no retry; callers surface failures as a
// generic error to the user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient constructs a new Groq client with sane defaults.
func NewClient(apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    BaseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// ChatCompletion sends the messages and returns the first choice's content.
// When jsonMode is set the model is asked for a JSON object response.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	req := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.3,
		MaxTokens:   1024,
	}
	if jsonMode {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	var resp ChatResponse
	if err := c.doRequest(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) doRequest(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("groq: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("groq: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("groq: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiResp ChatResponse
		if jsonErr := json.Unmarshal(raw, &apiResp); jsonErr == nil && apiResp.Error != nil {
			return fmt.Errorf("groq: %s (status %d)", apiResp.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("groq: unexpected status %d", resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}
