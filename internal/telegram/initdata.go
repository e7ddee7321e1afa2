package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// AnonymousUserID identifies requests whose initData cannot be verified.
const AnonymousUserID int64 = 0

var ErrInvalidInitData = errors.New("invalid Telegram initData")

// User is the subset of the WebApp user object the service relies on.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// ParseInitData verifies a Telegram WebApp initData string against the bot
// token and returns the user it describes.
//
// The hash field must equal HMAC-SHA256 of the remaining fields, sorted and
// joined as key=value lines, keyed by HMAC-SHA256("WebAppData", botToken).
func ParseInitData(initData, botToken string) (User, error) {
	if botToken == "" {
		return User{}, fmt.Errorf("%w: no bot token configured", ErrInvalidInitData)
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	received, err := hex.DecodeString(values.Get("hash"))
	if err != nil || len(received) == 0 {
		return User{}, fmt.Errorf("%w: missing or malformed hash", ErrInvalidInitData)
	}

	if !hmac.Equal(received, Sign(values, botToken)) {
		return User{}, fmt.Errorf("%w: hash mismatch", ErrInvalidInitData)
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return User{}, fmt.Errorf("%w: no user", ErrInvalidInitData)
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return User{}, fmt.Errorf("%w: user decode failed: %v", ErrInvalidInitData, err)
	}

	return user, nil
}

// Sign computes the initData hash over every field except "hash".
func Sign(values url.Values, botToken string) []byte {
	lines := make([]string, 0, len(values))
	for k, v := range values {
		if k == "hash" || len(v) == 0 {
			continue
		}
		lines = append(lines, k+"="+v[0])
	}
	sort.Strings(lines)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))

	return mac.Sum(nil)
}
