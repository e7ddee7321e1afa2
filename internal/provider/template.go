package provider

import (
	"context"
	"errors"

	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
)

// Template picks a text from a local pool. The choice is seeded by the key,
// so a key always yields the same text.
type Template struct {
	pool []string
}

func NewTemplate(pool []string) *Template {
	return &Template{pool: pool}
}

func (t *Template) Name() string {
	return "template"
}

func (t *Template) Fetch(_ context.Context, key resolver.ContentKey) (string, error) {
	text, ok := horoscope.PickRandom(horoscope.SeededRand(key.String()), t.pool)
	if !ok {
		return "", errors.New("template pool is empty")
	}
	return text, nil
}
