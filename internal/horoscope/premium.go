package horoscope

import (
	"fmt"
	"strings"
	"time"
)

// LuckyColors is the pool a premium forecast draws its colour from.
var LuckyColors = []string{"gold", "emerald", "sapphire"}

const (
	luckyNumberCount = 3
	luckyNumberMax   = 50
)

// elementGenitive names each element as it reads after "стихии".
var elementGenitive = map[Element]string{
	Fire:  "Огня",
	Earth: "Земли",
	Air:   "Воздуха",
	Water: "Воды",
}

// PremiumForecast extends the daily forecast with advice and lucky picks.
type PremiumForecast struct {
	DetailedForecast  string `json:"detailedForecast"`
	LoveCompatibility string `json:"loveCompatibility"`
	CareerAdvice      string `json:"careerAdvice"`
	HealthTips        string `json:"healthTips"`
	LuckyNumbers      []int  `json:"luckyNumbers"`
	LuckyColor        string `json:"luckyColor"`
	MoonInfluence     string `json:"moonInfluence"`
	BirthChartInsight string `json:"birthChartInsight,omitempty"`
}

// NewPremiumForecast builds the premium view around an already resolved
// forecast. The lucky picks are seeded by sign and UTC day, so every request
// for the same sign on the same day sees the same numbers and colour.
func NewPremiumForecast(sign Sign, day time.Time, forecast, birthTime string) PremiumForecast {
	date := day.UTC().Truncate(24 * time.Hour)
	rng := SeededRand("premium", sign.Slug, date.Format(time.DateOnly))

	numbers := make([]int, luckyNumberCount)
	for i := range numbers {
		numbers[i] = rng.IntN(luckyNumberMax) + 1
	}
	color, _ := PickRandom(rng, LuckyColors)

	phase := MoonPhaseAt(date.Add(12 * time.Hour))

	p := PremiumForecast{
		DetailedForecast:  forecast,
		LoveCompatibility: fmt.Sprintf("Сегодня ваша энергия привлечет нужных людей. Лучшая совместимость со знаками стихии %s.", elementGenitive[sign.Element]),
		CareerAdvice:      "Профессиональные возможности открываются через общение с коллегами.",
		HealthTips:        "Обратите внимание на сон и питание: ваше тело нуждается в заботе.",
		LuckyNumbers:      numbers,
		LuckyColor:        color,
		MoonInfluence:     fmt.Sprintf("%s усиливает вашу интуицию.", phase.Name),
	}

	if birthTime = strings.TrimSpace(birthTime); birthTime != "" {
		p.BirthChartInsight = fmt.Sprintf("Ваше время рождения (%s) дает дополнительную энергию в первой половине дня.", birthTime)
	}

	return p
}
