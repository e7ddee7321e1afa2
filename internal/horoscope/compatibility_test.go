package horoscope_test

import (
	"testing"

	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatibility(t *testing.T) {
	cases := []struct {
		first, second string
		score         int
	}{
		{first: "leo", second: "leo", score: 75},
		{first: "aries", second: "leo", score: 90},
		{first: "aries", second: "gemini", score: 80},
		{first: "taurus", second: "pisces", score: 80},
		{first: "aries", second: "cancer", score: 40},
		{first: "virgo", second: "libra", score: 40},
		{first: "aries", second: "taurus", score: 60},
		{first: "gemini", second: "scorpio", score: 60},
	}

	for _, tc := range cases {
		t.Run(tc.first+"+"+tc.second, func(t *testing.T) {
			a, err := horoscope.ParseSign(tc.first)
			require.NoError(t, err)
			b, err := horoscope.ParseSign(tc.second)
			require.NoError(t, err)

			match := horoscope.Compatibility(a, b)
			assert.Equal(t, tc.score, match.Score)
			assert.NotEmpty(t, match.Summary)
			assert.Equal(t, match, horoscope.Compatibility(b, a))
		})
	}
}
