package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
)

const aztroTimeout = 5 * time.Second

// Aztro fetches the daily description for a sign from the Aztro API. The
// API only knows yesterday, today and tomorrow, so keys for other days fail.
type Aztro struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

var _ resolver.TimeoutProvider = (*Aztro)(nil)

// NewAztro creates the provider. A nil client uses http.DefaultClient and a
// nil clock uses time.Now.
func NewAztro(baseURL string, client *http.Client, clock func() time.Time) *Aztro {
	if clock == nil {
		clock = time.Now
	}
	return &Aztro{
		baseURL: baseURL,
		client:  httpClient(client),
		now:     clock,
	}
}

func (a *Aztro) Name() string {
	return "aztro"
}

func (a *Aztro) Timeout() time.Duration {
	return aztroTimeout
}

type aztroResponse struct {
	Description string `json:"description"`
}

func (a *Aztro) Fetch(ctx context.Context, key resolver.ContentKey) (string, error) {
	day, err := a.relativeDay(key)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid aztro URL: %w", err)
	}
	q := u.Query()
	q.Set("sign", key.Value())
	q.Set("day", day)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("aztro request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("aztro request failed: %w", err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return "", err
	}

	var body aztroResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("aztro response decode failed: %w", err)
	}

	return body.Description, nil
}

// relativeDay maps the key's date to the API's day parameter.
func (a *Aztro) relativeDay(key resolver.ContentKey) (string, error) {
	date, ok := key.Date()
	if !ok {
		return "today", nil
	}

	today := a.now().UTC().Truncate(24 * time.Hour)
	switch date.Sub(today) {
	case 0:
		return "today", nil
	case -24 * time.Hour:
		return "yesterday", nil
	case 24 * time.Hour:
		return "tomorrow", nil
	default:
		return "", fmt.Errorf("aztro has no forecast for %s", date.Format(time.DateOnly))
	}
}
