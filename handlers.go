package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/audit"
	"github.com/gnome-horoscope/gnome-bridge/internal/catalog"
	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/gnome-horoscope/gnome-bridge/internal/telegram"
	"github.com/rs/zerolog/log"
)

const apiVersion = "3.0.0"

// HTTPStatuser provides HTTP status information for errors
type HTTPStatuser interface {
	Status() (int, string)
}

// requestError is a client error carrying its own status.
type requestError struct {
	status  int
	message string
}

func (e requestError) Error() string {
	return e.message
}

func (e requestError) Status() (int, string) {
	return e.status, e.message
}

func badRequest(message string) error {
	return requestError{status: http.StatusBadRequest, message: message}
}

type contentResponse struct {
	Key string `json:"key"`
	resolver.ResolvedContent
}

type horoscopeResponse struct {
	Sign string `json:"sign"`
	Slug string `json:"slug"`
	Date string `json:"date"`
	resolver.ResolvedContent
}

type moonResponse struct {
	Date  string              `json:"date"`
	Phase horoscope.MoonPhase `json:"phase"`
	resolver.ResolvedContent
}

type numerologyResponse struct {
	Date    string `json:"date"`
	Number  int    `json:"number"`
	Meaning string `json:"meaning"`
}

type compatibilityResponse struct {
	First  string `json:"first"`
	Second string `json:"second"`
	horoscope.Match
}

type astroEventsResponse struct {
	Events    []string `json:"events"`
	Timestamp string   `json:"timestamp"`
}

type dayCardRequest struct {
	InitData string `json:"initData"`
}

type premiumRequest struct {
	InitData      string `json:"initData"`
	Sign          string `json:"sign"`
	BirthTime     string `json:"birthTime"`
	BirthLocation string `json:"birthLocation"`
}

type premiumResponse struct {
	Sign          string                    `json:"sign"`
	Slug          string                    `json:"slug"`
	Date          string                    `json:"date"`
	Source        string                    `json:"source"`
	Cached        bool                      `json:"cached"`
	PremiumData   horoscope.PremiumForecast `json:"premiumData"`
	BirthTime     string                    `json:"birthTime,omitempty"`
	BirthLocation string                    `json:"birthLocation,omitempty"`
}

func handleRoot(now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		writeJSON(w, map[string]string{
			"message": "Gnome Horoscope API",
			"version": apiVersion,
			"time":    now().UTC().Format(time.RFC3339),
		})
	})
}

// handleContent serves any configured family. The domain key is "family" or
// "family:value", e.g. "moon" or "horoscope:leo".
func handleContent(cat *catalog.Catalog, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		family, value, _ := strings.Cut(r.PathValue("domainKey"), ":")
		family = strings.ToLower(strings.TrimSpace(family))

		res, ok := cat.Resolver(family)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "unknown content family")
			return
		}

		switch family {
		case catalog.FamilyHoroscope:
			sign, err := requireSign(value)
			if err != nil {
				writeError(w, r, err)
				return
			}
			value = sign.Slug
		default:
			// other families have no per-value content: every value shares
			// one daily entry
			value = resolver.AllValues
		}

		key := resolver.DailyKey(family, value, now())

		content, err := resolver.Auditor(res.Resolve)(r.Context(), key)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, contentResponse{Key: key.String(), ResolvedContent: content})
	})
}

// handleHoroscope serves both /api/horoscope?sign= and /api/horoscope/{sign}.
func handleHoroscope(resolve resolver.ResolveFunc, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		input := r.PathValue("sign")
		if input == "" {
			input = r.URL.Query().Get("sign")
		}

		sign, err := requireSign(input)
		if err != nil {
			writeError(w, r, err)
			return
		}

		day := now().UTC()
		if d := r.URL.Query().Get("date"); d != "" {
			day, err = time.Parse(time.DateOnly, d)
			if err != nil {
				writeError(w, r, badRequest("date must be formatted as YYYY-MM-DD"))
				return
			}
		}

		key := resolver.DailyKey(catalog.FamilyHoroscope, sign.Slug, day)

		content, err := resolve(r.Context(), key)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, horoscopeResponse{
			Sign:            sign.Name,
			Slug:            sign.Slug,
			Date:            day.Format(time.DateOnly),
			ResolvedContent: content,
		})
	})
}

func handleMoon(resolve resolver.ResolveFunc, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		at := now().UTC()

		content, err := resolve(r.Context(), resolver.DailyKey(catalog.FamilyMoon, "", at))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, moonResponse{
			Date:            at.Format(time.DateOnly),
			Phase:           horoscope.MoonPhaseAt(at),
			ResolvedContent: content,
		})
	})
}

func handleDayCard(dealer *horoscope.DayCardDealer, botToken string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		var req dayCardRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if strings.TrimSpace(req.InitData) == "" {
			writeError(w, r, badRequest("initData is required"))
			return
		}

		userID := telegram.AnonymousUserID
		user, err := telegram.ParseInitData(req.InitData, botToken)
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("initData not verified, dealing anonymous card")
		} else {
			userID = user.ID
		}
		audit.Log(r.Context()).UserID = userID

		card, err := dealer.Deal(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, card)
	})
}

// handlePremiumHoroscope expands the day's horoscope for a sign. The
// forecast text comes from the horoscope resolver, so it is the same text
// /api/horoscope serves for that sign and day.
func handlePremiumHoroscope(resolve resolver.ResolveFunc, botToken string, now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		var req premiumRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		sign, err := requireSign(req.Sign)
		if err != nil {
			writeError(w, r, err)
			return
		}

		birthTime := strings.TrimSpace(req.BirthTime)
		if birthTime != "" {
			if _, err := time.Parse("15:04", birthTime); err != nil {
				writeError(w, r, badRequest("birthTime must be formatted as HH:MM"))
				return
			}
		}

		userID := telegram.AnonymousUserID
		if strings.TrimSpace(req.InitData) != "" {
			user, err := telegram.ParseInitData(req.InitData, botToken)
			if err != nil {
				log.Ctx(r.Context()).Debug().Err(err).Msg("initData not verified, serving premium forecast anonymously")
			} else {
				userID = user.ID
			}
		}
		audit.Log(r.Context()).UserID = userID

		day := now().UTC()

		content, err := resolve(r.Context(), resolver.DailyKey(catalog.FamilyHoroscope, sign.Slug, day))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, premiumResponse{
			Sign:          sign.Name,
			Slug:          sign.Slug,
			Date:          day.Format(time.DateOnly),
			Source:        content.Source,
			Cached:        content.Cached,
			PremiumData:   horoscope.NewPremiumForecast(sign, day, content.Text, birthTime),
			BirthTime:     birthTime,
			BirthLocation: strings.TrimSpace(req.BirthLocation),
		})
	})
}

func handleNumerology() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		raw := r.URL.Query().Get("date")
		if raw == "" {
			writeError(w, r, badRequest("date is required"))
			return
		}

		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, r, badRequest("date must be formatted as YYYY-MM-DD"))
			return
		}

		number := horoscope.LifePathNumber(date)

		writeJSON(w, numerologyResponse{
			Date:    date.Format(time.DateOnly),
			Number:  number,
			Meaning: horoscope.LifePathMeaning(number),
		})
	})
}

func handleCompatibility() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		first, err := requireSign(r.URL.Query().Get("first"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		second, err := requireSign(r.URL.Query().Get("second"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, compatibilityResponse{
			First:  first.Name,
			Second: second.Name,
			Match:  horoscope.Compatibility(first, second),
		})
	})
}

// handleAstroEvents has no event source yet and always answers with an empty
// list.
func handleAstroEvents(now func() time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		writeJSON(w, astroEventsResponse{
			Events:    []string{},
			Timestamp: now().UTC().Format(time.RFC3339),
		})
	})
}

func handleAPINotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "API endpoint not found",
			"path":  r.URL.Path,
		})
	})
}

func handleHealthCheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func requireSign(input string) (horoscope.Sign, error) {
	if strings.TrimSpace(input) == "" {
		return horoscope.Sign{}, badRequest("sign is required")
	}
	return horoscope.ParseSign(input)
}

// decodeJSONBody reads a JSON object from the request body, reporting an
// oversized body as 413 and anything else unreadable as 400.
func decodeJSONBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return requestError{status: http.StatusRequestEntityTooLarge, message: "request body too large"}
		}
		return badRequest("request body must be a JSON object")
	}
	return nil
}

func maxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, limit)
	}
}

// cors allows browser calls from the configured origins and answers
// preflight requests directly. A "*" entry allows any origin.
func cors(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			allowed = append(allowed, o)
		}
	}
	allowAny := slices.Contains(allowed, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			permitted := origin != "" && (allowAny || slices.Contains(allowed, origin))

			if permitted {
				if allowAny {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				defer drainRequestBody(r)
				if permitted {
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
					w.Header().Set("Access-Control-Max-Age", "600")
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError logs the failure to the request's audit entry and responds with
// the status the error chooses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		if entry := audit.Log(r.Context()); entry.Error == "" {
			entry.Error = err.Error()
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSONError(w, status, message)
}

// writeJSONError writes a JSON error response with the given status code and message.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// At this point the status code has been written, so we can only log
		log.Info().Msgf("failed to write JSON error response: %v", err)
	}
}

// errorStatus extracts HTTP status code and message from an error.
// Returns (StatusInternalServerError, StatusText) for errors that don't implement HTTPStatuser.
func errorStatus(err error) (int, string) {
	var statuser HTTPStatuser
	if errors.As(err, &statuser) {
		return statuser.Status()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, payload any) {
	marshalled, err := json.Marshal(payload)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(marshalled); err != nil {
		// record failure to log: trying to respond to the client at this
		// point will likely fail
		log.Info().Msgf("failed to write response: %v", err)
	}
}

// drainRequestBody drains the request body by reading and discarding the contents.
// This is useful to ensure the request body is fully consumed, which is important
// for connection reuse in HTTP/1 clients.
func drainRequestBody(r *http.Request) {
	if r.Body != nil {
		// 1MB max: after this we'll assume the client is broken or malicious
		// and close the connection
		io.CopyN(io.Discard, r.Body, maxRequestBytes)
	}
}
