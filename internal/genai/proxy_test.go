package genai_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"github.com/gnome-horoscope/gnome-bridge/internal/genai"
	"github.com/gnome-horoscope/gnome-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
)

func TestProxyHandler_Relays(t *testing.T) {
	mock := testhelpers.SetupMockGenAIServer(t)
	mock.Text = "relayed"

	handler := genai.ProxyHandler(genai.NewClient(config.GenAIConfig{URL: mock.Server.URL, APIKey: "secret-key"}))

	req := httptest.NewRequest(http.MethodPost, "/api/genai", strings.NewReader(`{"contents":[{"parts":[{"text":"hi"}]}]}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"text":"relayed"`)
	assert.Equal(t, "secret-key", mock.LastAPIKey.Load())
}

func TestProxyHandler_RelaysUpstreamStatus(t *testing.T) {
	mock := testhelpers.SetupMockGenAIServer(t)
	mock.StatusCode = http.StatusTooManyRequests

	handler := genai.ProxyHandler(genai.NewClient(config.GenAIConfig{URL: mock.Server.URL, APIKey: "secret-key"}))

	req := httptest.NewRequest(http.MethodPost, "/api/genai", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"error":{"code":429,"message":"quota exceeded"}}`, rr.Body.String())
}

func TestProxyHandler_NotConfigured(t *testing.T) {
	handler := genai.ProxyHandler(genai.NewClient(config.GenAIConfig{URL: "http://unused"}))

	req := httptest.NewRequest(http.MethodPost, "/api/genai", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"GOOGLE_API_KEY not configured"}`, rr.Body.String())
}

func TestProxyHandler_TransportError(t *testing.T) {
	testhelpers.SetupLogger(t)

	handler := genai.ProxyHandler(genai.NewClient(config.GenAIConfig{URL: "http://127.0.0.1:0/", APIKey: "secret-key"}))

	req := httptest.NewRequest(http.MethodPost, "/api/genai", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error":"generative API unavailable"}`, rr.Body.String())
}
