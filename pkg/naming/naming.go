// Package naming converts between canonical action names ("restart-game")
// and platform intent identifiers ("RestartGame").
package naming

import (
	"strings"
	"unicode"
)

// ToCanonical converts a camel-cased or concatenated identifier into
// hyphen-separated lower-case tokens: every upper-case letter after the first
// rune starts a new token. Other runes are kept as they are.
func ToCanonical(id string) string {
	if id == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(id) + 4)
	for i, r := range id {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToPlatformCase is the inverse of ToCanonical for names made of [a-z0-9-].
// A leading letter is capitalised and every inner hyphen followed by a letter
// is folded into the capital of that letter. Hyphens that cannot be folded
// (leading, trailing, repeated or before a digit) are kept literally.
func ToPlatformCase(name string) string {
	if name == "" {
		return ""
	}

	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case i == 0 && isLowerLetter(r):
			b.WriteRune(unicode.ToUpper(r))
		case r == '-' && i > 0 && i+1 < len(runes) && isLowerLetter(runes[i+1]):
			b.WriteRune(unicode.ToUpper(runes[i+1]))
			i++
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLowerLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}
