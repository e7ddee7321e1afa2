package provider

import (
	"context"

	"github.com/gnome-horoscope/gnome-bridge/internal/genai"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
)

// PromptFunc builds the generation prompt for a key.
type PromptFunc func(key resolver.ContentKey) string

// Generative asks the generative-language API to write the content.
type Generative struct {
	client *genai.Client
	prompt PromptFunc
}

func NewGenerative(client *genai.Client, prompt PromptFunc) *Generative {
	return &Generative{client: client, prompt: prompt}
}

func (g *Generative) Name() string {
	return "generative"
}

func (g *Generative) Fetch(ctx context.Context, key resolver.ContentKey) (string, error) {
	if !g.client.Configured() {
		return "", genai.ErrNotConfigured
	}

	return g.client.GenerateText(ctx, g.prompt(key))
}
