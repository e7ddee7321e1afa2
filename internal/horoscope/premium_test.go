package horoscope_test

import (
	"testing"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPremiumForecast_SameDaySamePicks(t *testing.T) {
	taurus, err := horoscope.ParseSign("taurus")
	require.NoError(t, err)

	morning := time.Date(2025, 8, 27, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 8, 27, 22, 0, 0, 0, time.UTC)

	first := horoscope.NewPremiumForecast(taurus, morning, "Good day", "")
	second := horoscope.NewPremiumForecast(taurus, evening, "Good day", "")

	assert.Equal(t, first, second)
	assert.Equal(t, "Good day", first.DetailedForecast)

	require.Len(t, first.LuckyNumbers, 3)
	for _, n := range first.LuckyNumbers {
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 50)
	}
	assert.Contains(t, horoscope.LuckyColors, first.LuckyColor)
	assert.Contains(t, first.LoveCompatibility, "Земли")
	assert.Contains(t, first.MoonInfluence, horoscope.MoonPhaseAt(morning.Truncate(24*time.Hour).Add(12*time.Hour)).Name)
	assert.Empty(t, first.BirthChartInsight)
}

func TestNewPremiumForecast_PicksVaryAcrossDaysAndSigns(t *testing.T) {
	day := time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC)

	// picks are deterministic per sign and day, so over a year some must differ
	base := horoscope.NewPremiumForecast(horoscope.Signs[0], day, "", "")
	varied := false
	for i := 1; i < 365 && !varied; i++ {
		other := horoscope.NewPremiumForecast(horoscope.Signs[0], day.AddDate(0, 0, i), "", "")
		varied = !assert.ObjectsAreEqual(base.LuckyNumbers, other.LuckyNumbers)
	}
	assert.True(t, varied, "lucky numbers never changed across days")

	varied = false
	for _, sign := range horoscope.Signs[1:] {
		other := horoscope.NewPremiumForecast(sign, day, "", "")
		if !assert.ObjectsAreEqual(base.LuckyNumbers, other.LuckyNumbers) {
			varied = true
			break
		}
	}
	assert.True(t, varied, "lucky numbers identical for every sign")
}

func TestNewPremiumForecast_BirthTimeInsight(t *testing.T) {
	day := time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC)

	p := horoscope.NewPremiumForecast(horoscope.Signs[4], day, "text", " 07:30 ")

	assert.Contains(t, p.BirthChartInsight, "(07:30)")
	assert.Contains(t, p.LoveCompatibility, "Огня")
}
