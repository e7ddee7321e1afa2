package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// MockAztroServer is a configurable stand-in for the Aztro horoscope API.
type MockAztroServer struct {
	Server       *httptest.Server
	Description  string // description to return
	StatusCode   int    // HTTP status code to return (200 if not set)
	RequestCount atomic.Int32
	LastSign     atomic.Value // sign query parameter of the last request
}

// SetupMockAztroServer creates a mock Aztro API server. The server is closed
// when the test completes.
func SetupMockAztroServer(t *testing.T) *MockAztroServer {
	t.Helper()

	mock := &MockAztroServer{
		Description: "A good day to start something new.",
		StatusCode:  http.StatusOK,
	}

	router := http.NewServeMux()
	router.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		mock.RequestCount.Add(1)
		mock.LastSign.Store(r.URL.Query().Get("sign"))

		if mock.StatusCode != http.StatusOK {
			w.WriteHeader(mock.StatusCode)
			return
		}

		WriteJSON(w, map[string]string{
			"description":   mock.Description,
			"compatibility": "Virgo",
			"mood":          "Calm",
		})
	})

	mock.Server = httptest.NewServer(router)
	t.Cleanup(mock.Server.Close)

	return mock
}

// MockPageServer serves a fixed HTML page for scraping tests.
type MockPageServer struct {
	Server        *httptest.Server
	HTML          string // body to serve
	StatusCode    int    // HTTP status code to return (200 if not set)
	RequestCount  atomic.Int32
	LastPath      atomic.Value
	LastUserAgent atomic.Value
}

// SetupMockPageServer creates a server returning the given HTML for any path.
// The server is closed when the test completes.
func SetupMockPageServer(t *testing.T, html string) *MockPageServer {
	t.Helper()

	mock := &MockPageServer{
		HTML:       html,
		StatusCode: http.StatusOK,
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.RequestCount.Add(1)
		mock.LastPath.Store(r.URL.Path)
		mock.LastUserAgent.Store(r.UserAgent())

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(mock.StatusCode)
		_, _ = fmt.Fprint(w, mock.HTML)
	}))
	t.Cleanup(mock.Server.Close)

	return mock
}

// MockGenAIServer stands in for the generative-language API.
type MockGenAIServer struct {
	Server       *httptest.Server
	Text         string // candidate text to return
	StatusCode   int    // HTTP status code to return (200 if not set)
	ErrorBody    string // body returned with a non-200 status
	RequestCount atomic.Int32
	LastAPIKey   atomic.Value
	LastBody     atomic.Value
}

// SetupMockGenAIServer creates a mock generateContent endpoint. The server is
// closed when the test completes.
func SetupMockGenAIServer(t *testing.T) *MockGenAIServer {
	t.Helper()

	mock := &MockGenAIServer{
		Text:       "The stars whisper of patience.",
		StatusCode: http.StatusOK,
		ErrorBody:  `{"error":{"code":429,"message":"quota exceeded"}}`,
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.RequestCount.Add(1)
		mock.LastAPIKey.Store(r.Header.Get("x-goog-api-key"))

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mock.LastBody.Store(body)

		if mock.StatusCode != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(mock.StatusCode)
			_, _ = w.Write([]byte(mock.ErrorBody))
			return
		}

		WriteJSON(w, map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"parts": []any{map[string]any{"text": mock.Text}},
						"role":  "model",
					},
				},
			},
		})
	}))
	t.Cleanup(mock.Server.Close)

	return mock
}

// WriteJSON is a helper function that writes a JSON response.
// It sets the Content-Type header and marshals the payload to JSON.
func WriteJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(payload)
	if err != nil {
		// In test context, this should never happen with valid test data
		http.Error(w, fmt.Sprintf("failed to marshal JSON: %v", err), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(data)
}
