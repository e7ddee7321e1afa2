package resolver

import (
	"strings"
	"time"
)

// ContentKey identifies a cacheable unit of content: a family (e.g.
// "horoscope"), a domain value (e.g. "leo") and usually a time bucket. The same
// logical request on the same day must always produce the same key.
type ContentKey string

const (
	keySeparator = ":"

	// AllValues stands in for the value segment of families that have no
	// per-value content, such as the moon.
	AllValues = "all"
)

// NewKey joins the family and parts into a key. Parts are trimmed and lower
// cased so that "Leo" and "leo" share a cache entry. Empty parts are dropped.
func NewKey(family string, parts ...string) ContentKey {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, normalizeSegment(family))
	for _, p := range parts {
		if p = normalizeSegment(p); p != "" {
			segments = append(segments, p)
		}
	}

	return ContentKey(strings.Join(segments, keySeparator))
}

// DailyKey builds a key bucketed by the UTC calendar day of the given time.
func DailyKey(family, value string, day time.Time) ContentKey {
	if strings.TrimSpace(value) == "" {
		value = AllValues
	}
	return NewKey(family, value, day.UTC().Format(time.DateOnly))
}

// Family returns the first segment of the key.
func (k ContentKey) Family() string {
	family, _, _ := strings.Cut(string(k), keySeparator)
	return family
}

// Value returns the second segment of the key, or "" if there is none.
func (k ContentKey) Value() string {
	segments := strings.Split(string(k), keySeparator)
	if len(segments) < 2 {
		return ""
	}
	return segments[1]
}

// Date parses the last segment of the key as a calendar day.
func (k ContentKey) Date() (time.Time, bool) {
	idx := strings.LastIndex(string(k), keySeparator)
	if idx < 0 {
		return time.Time{}, false
	}

	day, err := time.Parse(time.DateOnly, string(k)[idx+1:])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func (k ContentKey) String() string {
	return string(k)
}

func normalizeSegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// the separator cannot appear inside a segment
	return strings.ReplaceAll(s, keySeparator, "-")
}
