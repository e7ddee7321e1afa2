package horoscope_test

import (
	"net/http"
	"testing"

	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSign(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{input: "Телец", expected: "taurus"},
		{input: "телец", expected: "taurus"},
		{input: "ТЕЛЕЦ", expected: "taurus"},
		{input: "taurus", expected: "taurus"},
		{input: "Taurus", expected: "taurus"},
		{input: "  leo ", expected: "leo"},
		{input: "Близнецы", expected: "gemini"},
		{input: "Рыбы", expected: "pisces"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			sign, err := horoscope.ParseSign(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sign.Slug)
		})
	}
}

func TestParseSign_Unknown(t *testing.T) {
	for _, input := range []string{"", "Змееносец", "dragon"} {
		t.Run(input, func(t *testing.T) {
			_, err := horoscope.ParseSign(input)
			require.ErrorIs(t, err, horoscope.ErrUnknownSign)

			var signErr horoscope.UnknownSignError
			require.ErrorAs(t, err, &signErr)
			status, _ := signErr.Status()
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestSigns_Elements(t *testing.T) {
	counts := map[horoscope.Element]int{}
	for _, s := range horoscope.Signs {
		counts[s.Element]++
	}

	assert.Len(t, horoscope.Signs, 12)
	assert.Equal(t, map[horoscope.Element]int{
		horoscope.Fire: 3, horoscope.Earth: 3, horoscope.Air: 3, horoscope.Water: 3,
	}, counts)
}
