package horoscope

// Match is the compatibility of two signs.
type Match struct {
	Score   int    `json:"score"`
	Summary string `json:"summary"`
}

// complementary elements feed each other: fire with air, earth with water.
var complementary = map[Element]Element{
	Fire:  Air,
	Air:   Fire,
	Earth: Water,
	Water: Earth,
}

// opposed elements quench each other: fire with water, earth with air.
var opposed = map[Element]Element{
	Fire:  Water,
	Water: Fire,
	Earth: Air,
	Air:   Earth,
}

// Compatibility scores a pair of signs from their elements. The result is
// symmetric.
func Compatibility(a, b Sign) Match {
	switch {
	case a.Slug == b.Slug:
		return Match{Score: 75, Summary: "Зеркальная пара: вы понимаете друг друга без слов, но рискуете соперничать."}
	case a.Element == b.Element:
		return Match{Score: 90, Summary: "Одна стихия: гномы видят крепкую и гармоничную связь."}
	case complementary[a.Element] == b.Element:
		return Match{Score: 80, Summary: "Стихии дополняют друг друга: вместе вы сильнее."}
	case opposed[a.Element] == b.Element:
		return Match{Score: 40, Summary: "Противоположные стихии: союз потребует терпения и компромиссов."}
	default:
		return Match{Score: 60, Summary: "Нейтральное сочетание: многое зависит от ваших усилий."}
	}
}
