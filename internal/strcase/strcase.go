package strcase

import (
	"strings"
	"unicode"
)

// Words splits an identifier into its words. Boundaries are underscores,
// lower-to-upper transitions, the last capital of an acronym followed by a
// lowercase letter, and letter/digit transitions.
func Words(name string) []string {
	runes := []rune(name)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' || r == '.' {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i < len(runes)-1 && unicode.IsLower(runes[i+1])
			switch {
			case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && nextLower:
				flush()
			case unicode.IsDigit(r) && unicode.IsLetter(prev):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}

func ToSnakeCase(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}
