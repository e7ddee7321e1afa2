package genai

import (
	"encoding/json"
	"net/http"

	"github.com/gnome-horoscope/gnome-bridge/internal/audit"
	"github.com/rs/zerolog/log"
)

// ProxyHandler relays a generateContent request body to the API, adding the
// server's key. The upstream status and body are passed back unchanged.
func ProxyHandler(client *Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !client.Configured() {
			writeError(w, http.StatusInternalServerError, ErrNotConfigured.Error())
			return
		}

		res, err := client.Forward(r.Context(), r.Body)
		if err != nil {
			audit.Log(r.Context()).Error = err.Error()
			log.Ctx(r.Context()).Warn().Err(err).Msg("generative proxy request failed")
			writeError(w, http.StatusBadGateway, "generative API unavailable")
			return
		}

		contentType := res.ContentType
		if contentType == "" {
			contentType = "application/json"
		}

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(res.StatusCode)
		if _, err := w.Write(res.Body); err != nil {
			log.Ctx(r.Context()).Info().Err(err).Msg("failed to write generative proxy response")
		}
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
