package resolver_test

import (
	"context"
	"testing"

	"github.com/gnome-horoscope/gnome-bridge/internal/audit"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor_RecordsOutcome(t *testing.T) {
	inner := func(ctx context.Context, key resolver.ContentKey) (resolver.ResolvedContent, error) {
		return resolver.ResolvedContent{Text: "t", Source: "aztro", Cached: true}, nil
	}

	ctx, entry := audit.Context(context.Background())

	content, err := resolver.Auditor(inner)(ctx, "horoscope:leo:2025-08-27")
	require.NoError(t, err)

	assert.Equal(t, "aztro", content.Source)
	assert.Equal(t, "horoscope:leo:2025-08-27", entry.ContentKey)
	assert.Equal(t, "aztro", entry.ContentSource)
	assert.True(t, entry.Cached)
	assert.Empty(t, entry.Error)
}

func TestAuditor_RecordsError(t *testing.T) {
	inner := func(ctx context.Context, key resolver.ContentKey) (resolver.ResolvedContent, error) {
		return resolver.ResolvedContent{}, &resolver.ConfigurationError{Resolver: "tarot", Family: "tarot"}
	}

	ctx, entry := audit.Context(context.Background())

	_, err := resolver.Auditor(inner)(ctx, "tarot:fool")
	require.Error(t, err)

	assert.Equal(t, "tarot:fool", entry.ContentKey)
	assert.Contains(t, entry.Error, "resolve failure: resolver tarot: no fallback configured")
	assert.Empty(t, entry.ContentSource)
}
