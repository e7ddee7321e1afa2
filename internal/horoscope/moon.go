package horoscope

import (
	"fmt"
	"math"
	"time"
)

const synodicMonth = 29.530588853 // days

// referenceNewMoon is a known new moon used as the epoch for phase arithmetic.
var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

var moonPhaseNames = [8]string{
	"Новолуние",
	"Растущий серп",
	"Первая четверть",
	"Растущая луна",
	"Полнолуние",
	"Убывающая луна",
	"Последняя четверть",
	"Убывающий серп",
}

// MoonPhase is an approximate lunar phase computed locally.
type MoonPhase struct {
	Name         string  `json:"name"`
	Age          float64 `json:"age"`          // days since the last new moon
	Illumination float64 `json:"illumination"` // lit fraction, 0 to 1
}

// MoonPhaseAt computes the phase at t from the mean synodic month. Accuracy is
// within about a day, which is enough for naming the phase.
func MoonPhaseAt(t time.Time) MoonPhase {
	days := t.Sub(referenceNewMoon).Hours() / 24
	age := math.Mod(days, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}

	fraction := age / synodicMonth
	index := int(math.Floor(fraction*8+0.5)) % 8

	return MoonPhase{
		Name:         moonPhaseNames[index],
		Age:          math.Round(age*10) / 10,
		Illumination: math.Round((1-math.Cos(2*math.Pi*fraction))/2*100) / 100,
	}
}

// String formats the phase as display text.
func (p MoonPhase) String() string {
	return fmt.Sprintf("%s. Возраст Луны: %.1f дн., освещенность %d%%.",
		p.Name, p.Age, int(math.Round(p.Illumination*100)))
}
