package checkin

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanupName strips and collapses spaces, then title-cases every word. A
// letter after an apostrophe starts a new word too, so "o'brien" becomes
// "O'Brien".
func CleanupName(s string) string {
	caser := cases.Title(language.Und)
	words := strings.Fields(s)
	for i, word := range words {
		var b strings.Builder
		start := 0
		for j, r := range word {
			if r == '\'' || r == '’' {
				b.WriteString(caser.String(word[start:j]))
				b.WriteRune(r)
				start = j + utf8.RuneLen(r)
			}
		}
		b.WriteString(caser.String(word[start:]))
		words[i] = b.String()
	}
	return strings.Join(words, " ")
}

// NormalizeCode trims and uppercases a code typed at the entry point.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
