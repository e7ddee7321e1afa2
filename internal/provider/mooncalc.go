package provider

import (
	"context"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
)

// MoonCalc describes the moon phase computed locally for the key's day. It
// never fails, which makes it a good last provider.
type MoonCalc struct {
	now func() time.Time
}

func NewMoonCalc(clock func() time.Time) *MoonCalc {
	if clock == nil {
		clock = time.Now
	}
	return &MoonCalc{now: clock}
}

func (m *MoonCalc) Name() string {
	return "calc"
}

func (m *MoonCalc) Fetch(_ context.Context, key resolver.ContentKey) (string, error) {
	day, ok := key.Date()
	if !ok {
		day = m.now().UTC().Truncate(24 * time.Hour)
	}

	// midday is representative of the whole day
	return horoscope.MoonPhaseAt(day.Add(12 * time.Hour)).String(), nil
}
