package horoscope_test

import (
	"testing"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/horoscope"
	"github.com/stretchr/testify/assert"
)

func TestLifePathNumber(t *testing.T) {
	cases := []struct {
		date     string
		expected int
	}{
		{date: "1990-05-15", expected: 3},
		{date: "2000-02-29", expected: 6},
		{date: "1985-12-27", expected: 8},
		{date: "2000-01-08", expected: 11},
		{date: "2009-09-20", expected: 22},
		{date: "2000-01-01", expected: 4},
	}

	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			date, err := time.Parse(time.DateOnly, tc.date)
			assert.NoError(t, err)

			n := horoscope.LifePathNumber(date)
			assert.Equal(t, tc.expected, n)
			assert.NotEmpty(t, horoscope.LifePathMeaning(n))
		})
	}
}
