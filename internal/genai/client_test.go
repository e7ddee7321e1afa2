package genai_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"github.com/gnome-horoscope/gnome-bridge/internal/genai"
	"github.com/gnome-horoscope/gnome-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateText(t *testing.T) {
	mock := testhelpers.SetupMockGenAIServer(t)
	mock.Text = "  Звезды советуют терпение.  "

	client := genai.NewClient(config.GenAIConfig{URL: mock.Server.URL, APIKey: "secret-key"})

	text, err := client.GenerateText(context.Background(), "horoscope for leo")
	require.NoError(t, err)
	assert.Equal(t, "Звезды советуют терпение.", text)

	assert.Equal(t, "secret-key", mock.LastAPIKey.Load())

	body := mock.LastBody.Load().(map[string]any)
	contents := body["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "horoscope for leo", parts[0].(map[string]any)["text"])
}

func TestGenerateText_UpstreamError(t *testing.T) {
	mock := testhelpers.SetupMockGenAIServer(t)
	mock.StatusCode = http.StatusTooManyRequests

	client := genai.NewClient(config.GenAIConfig{URL: mock.Server.URL, APIKey: "secret-key"})

	_, err := client.GenerateText(context.Background(), "prompt")

	var statusErr genai.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "quota exceeded")
}

func TestGenerateText_UpstreamErrorBodyTruncatedByRunes(t *testing.T) {
	mock := testhelpers.SetupMockGenAIServer(t)
	mock.StatusCode = http.StatusBadGateway
	mock.ErrorBody = strings.Repeat("ж", 250)

	client := genai.NewClient(config.GenAIConfig{URL: mock.Server.URL, APIKey: "secret-key"})

	_, err := client.GenerateText(context.Background(), "prompt")

	var statusErr genai.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, utf8.ValidString(statusErr.Body))
	assert.Equal(t, 200, utf8.RuneCountInString(statusErr.Body))
}

func TestGenerateText_EmptyCandidate(t *testing.T) {
	mock := testhelpers.SetupMockGenAIServer(t)
	mock.Text = "   "

	client := genai.NewClient(config.GenAIConfig{URL: mock.Server.URL, APIKey: "secret-key"})

	_, err := client.GenerateText(context.Background(), "prompt")
	assert.ErrorContains(t, err, "no candidate text")
}

func TestGenerateText_NotConfigured(t *testing.T) {
	mock := testhelpers.SetupMockGenAIServer(t)

	client := genai.NewClient(config.GenAIConfig{URL: mock.Server.URL})

	_, err := client.GenerateText(context.Background(), "prompt")
	assert.ErrorIs(t, err, genai.ErrNotConfigured)
	assert.Equal(t, int32(0), mock.RequestCount.Load())
}

func TestForward_TransportError(t *testing.T) {
	client := genai.NewClient(config.GenAIConfig{URL: "http://127.0.0.1:0/", APIKey: "secret-key"})

	_, err := client.Forward(context.Background(), strings.NewReader("{}"))
	assert.ErrorContains(t, err, "generative API request failed")
}
