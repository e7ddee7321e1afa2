package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gnome-horoscope/gnome-bridge/internal/config"
)

// maxResponseSize bounds how much of an upstream response is read.
const maxResponseSize = 10 * 1024 * 1024

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("GOOGLE_API_KEY not configured")

// Client calls the generative-language API with the server-held key, so the
// key is never exposed to browsers.
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

// Response is an upstream reply, relayed as received.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError reports a non-2xx upstream reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("generative API returned status %d: %s", e.StatusCode, e.Body)
}

func NewClient(cfg config.GenAIConfig) *Client {
	return &Client{
		URL:    cfg.URL,
		APIKey: cfg.APIKey,
		HTTP:   &http.Client{},
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Forward posts body to the API and returns the reply verbatim. Only
// transport failures are errors: any upstream status is returned as a
// Response.
func (c *Client) Forward(ctx context.Context, body io.Reader) (Response, error) {
	if !c.Configured() {
		return Response{}, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("generative API request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	res, err := c.httpClient().Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("generative API request failed: %w", err)
	}
	defer res.Body.Close()

	content, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return Response{}, fmt.Errorf("generative API response read failed: %w", err)
	}

	return Response{
		StatusCode:  res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        content,
	}, nil
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
	Role  string         `json:"role,omitempty"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends a single-turn prompt and returns the text of the first
// candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("generative API request encoding failed: %w", err)
	}

	res, err := c.Forward(ctx, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", StatusError{StatusCode: res.StatusCode, Body: truncate(string(res.Body), 200)}
	}

	var decoded generateResponse
	if err := json.Unmarshal(res.Body, &decoded); err != nil {
		return "", fmt.Errorf("generative API response decode failed: %w", err)
	}

	for _, candidate := range decoded.Candidates {
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}

	return "", errors.New("generative API returned no candidate text")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
