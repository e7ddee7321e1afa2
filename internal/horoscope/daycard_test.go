package horoscope_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/cache"
	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCardCache(t *testing.T) cache.ContentCache[horoscope.DayCard] {
	t.Helper()

	c, err := cache.NewMemory[horoscope.DayCard](horoscope.DayCardTTL, 100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestDayCardDealer_SameDayReused(t *testing.T) {
	now := time.Date(2025, 8, 27, 9, 0, 0, 0, time.UTC)
	dealer := horoscope.NewDayCardDealer(newCardCache(t), func() time.Time { return now })

	first, err := dealer.Deal(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, first.Reused)
	assert.Equal(t, "2025-08-27", first.Date)
	assert.Contains(t, horoscope.DayCards, first.DayCard)

	now = now.Add(10 * time.Hour)

	second, err := dealer.Deal(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.DayCard, second.DayCard)
}

func TestDayCardDealer_NewDayNewDeal(t *testing.T) {
	now := time.Date(2025, 8, 27, 23, 0, 0, 0, time.UTC)
	dealer := horoscope.NewDayCardDealer(newCardCache(t), func() time.Time { return now })

	_, err := dealer.Deal(context.Background(), 42)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)

	next, err := dealer.Deal(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, next.Reused)
	assert.Equal(t, "2025-08-28", next.Date)
}

func TestDayCardDealer_UsersIndependent(t *testing.T) {
	dealer := horoscope.NewDayCardDealer(newCardCache(t), nil)

	_, err := dealer.Deal(context.Background(), 1)
	require.NoError(t, err)

	other, err := dealer.Deal(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, other.Reused)
}

type failingCardCache struct{}

func (failingCardCache) Get(context.Context, string) (horoscope.DayCard, bool, error) {
	return horoscope.DayCard{}, false, errors.New("cache down")
}

func (failingCardCache) Set(context.Context, string, horoscope.DayCard) error {
	return errors.New("cache down")
}

func (failingCardCache) Invalidate(context.Context, string) error { return nil }

func (failingCardCache) Close() error { return nil }

func TestDayCardDealer_CacheFailureStillDeals(t *testing.T) {
	dealer := horoscope.NewDayCardDealer(failingCardCache{}, nil)

	card, err := dealer.Deal(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, card.Reused)
	assert.NotEmpty(t, card.Title)
}
