package horoscope

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
)

type Element string

const (
	Fire  Element = "fire"
	Earth Element = "earth"
	Air   Element = "air"
	Water Element = "water"
)

// Sign is a zodiac sign. Slug is the stable identifier used in content keys
// and upstream requests; Name is the Russian display name.
type Sign struct {
	Slug    string  `json:"slug"`
	Name    string  `json:"name"`
	Element Element `json:"element"`
}

// Signs lists the zodiac in calendar order, starting with Aries.
var Signs = []Sign{
	{Slug: "aries", Name: "Овен", Element: Fire},
	{Slug: "taurus", Name: "Телец", Element: Earth},
	{Slug: "gemini", Name: "Близнецы", Element: Air},
	{Slug: "cancer", Name: "Рак", Element: Water},
	{Slug: "leo", Name: "Лев", Element: Fire},
	{Slug: "virgo", Name: "Дева", Element: Earth},
	{Slug: "libra", Name: "Весы", Element: Air},
	{Slug: "scorpio", Name: "Скорпион", Element: Water},
	{Slug: "sagittarius", Name: "Стрелец", Element: Fire},
	{Slug: "capricorn", Name: "Козерог", Element: Earth},
	{Slug: "aquarius", Name: "Водолей", Element: Air},
	{Slug: "pisces", Name: "Рыбы", Element: Water},
}

// signIndex maps case-folded Russian names and slugs to signs.
var signIndex = func() map[string]Sign {
	fold := cases.Fold()
	index := make(map[string]Sign, len(Signs)*2)
	for _, s := range Signs {
		index[fold.String(s.Slug)] = s
		index[fold.String(s.Name)] = s
	}
	return index
}()

var ErrUnknownSign = errors.New("unknown zodiac sign")

// UnknownSignError reports input that names no zodiac sign.
type UnknownSignError struct {
	Input string
}

func (e UnknownSignError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownSign, e.Input)
}

func (e UnknownSignError) Is(target error) bool {
	return target == ErrUnknownSign
}

func (e UnknownSignError) Status() (int, string) {
	return http.StatusBadRequest, "Неизвестный знак зодиака"
}

// ParseSign accepts either the Russian name ("Телец") or the English slug
// ("taurus") in any letter case.
func ParseSign(input string) (Sign, error) {
	folded := cases.Fold().String(strings.TrimSpace(input))

	sign, ok := signIndex[folded]
	if !ok {
		return Sign{}, UnknownSignError{Input: input}
	}

	return sign, nil
}
