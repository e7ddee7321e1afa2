package provider_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/provider"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/gnome-horoscope/gnome-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 8, 27, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return today }

func TestAztro_Fetch(t *testing.T) {
	mock := testhelpers.SetupMockAztroServer(t)
	mock.Description = "Taurus, take it slow today."

	aztro := provider.NewAztro(mock.Server.URL+"/", nil, clock)

	text, err := aztro.Fetch(context.Background(), resolver.DailyKey("horoscope", "taurus", today))
	require.NoError(t, err)
	assert.Equal(t, "Taurus, take it slow today.", text)
	assert.Equal(t, "taurus", mock.LastSign.Load())
	assert.Equal(t, "aztro", aztro.Name())
	assert.Equal(t, 5*time.Second, aztro.Timeout())
}

func TestAztro_RelativeDays(t *testing.T) {
	mock := testhelpers.SetupMockAztroServer(t)
	aztro := provider.NewAztro(mock.Server.URL, nil, clock)

	for _, offset := range []int{-1, 0, 1} {
		_, err := aztro.Fetch(context.Background(), resolver.DailyKey("horoscope", "leo", today.AddDate(0, 0, offset)))
		assert.NoError(t, err, "offset %d", offset)
	}

	_, err := aztro.Fetch(context.Background(), resolver.DailyKey("horoscope", "leo", today.AddDate(0, 0, 5)))
	assert.ErrorContains(t, err, "no forecast for 2025-09-01")
	assert.Equal(t, int32(3), mock.RequestCount.Load())
}

func TestAztro_ErrorStatus(t *testing.T) {
	mock := testhelpers.SetupMockAztroServer(t)
	mock.StatusCode = http.StatusServiceUnavailable

	aztro := provider.NewAztro(mock.Server.URL, nil, clock)

	_, err := aztro.Fetch(context.Background(), resolver.DailyKey("horoscope", "leo", today))

	var statusErr provider.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}
