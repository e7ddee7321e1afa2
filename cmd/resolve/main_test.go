package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/gnome-horoscope/gnome-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localProviders(t *testing.T) {
	t.Helper()
	testhelpers.SetupLogger(t)

	t.Setenv("HOROSCOPE_PROVIDERS", "template")
	t.Setenv("HOROSCOPE_DECORATE", "false")
	t.Setenv("MOON_PROVIDERS", "calc")
	t.Setenv("RESOLVER_FALLBACK_FILE", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestResolve_Horoscope(t *testing.T) {
	localProviders(t)

	out, err := run(t, "horoscope", "Leo", "--date", "2025-08-27", "--repeat", "2")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))

	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, "horoscope:leo:2025-08-27", first["key"])
	assert.Equal(t, "template", first["source"])
	assert.Equal(t, false, first["cached"])
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, first["text"], second["text"])
}

func TestResolve_HoroscopeRussianNameUsesSlug(t *testing.T) {
	localProviders(t)

	out, err := run(t, "horoscope", "Телец", "--date", "2025-08-27")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "horoscope:taurus:2025-08-27"`)
	assert.Contains(t, out, `"source": "template"`)
}

func TestResolve_Moon(t *testing.T) {
	localProviders(t)

	out, err := run(t, "moon", "--date", "2025-08-27")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "moon:all:2025-08-27"`)
	assert.Contains(t, out, `"source": "calc"`)
}

func TestResolve_Errors(t *testing.T) {
	localProviders(t)

	_, err := run(t, "tarot")
	assert.ErrorContains(t, err, `unknown content family "tarot"`)

	_, err = run(t, "moon", "--date", "tomorrow")
	assert.ErrorContains(t, err, "--date must be formatted as YYYY-MM-DD")

	_, err = run(t, "horoscope", "dragon")
	assert.ErrorIs(t, err, horoscope.ErrUnknownSign)

	_, err = run(t, "horoscope")
	assert.ErrorContains(t, err, "a sign is required")

	_, err = run(t)
	assert.Error(t, err)
}
