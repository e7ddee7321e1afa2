package resolver

// Transform post-processes provider content before it is cached. It is never
// applied to fallback content.
type Transform func(string) string

func Prefix(prefix string) Transform {
	return func(s string) string {
		return prefix + s
	}
}

func Suffix(suffix string) Transform {
	return func(s string) string {
		return s + suffix
	}
}

// Chain applies transforms in order. Nil transforms are skipped.
func Chain(transforms ...Transform) Transform {
	return func(s string) string {
		for _, t := range transforms {
			if t != nil {
				s = t(s)
			}
		}
		return s
	}
}
