package schema

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	camelWordBoundary  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelLowerToUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	titleWordSeparator = strings.NewReplacer("_", " ", "-", " ")
)

// NameToTitle converts camelCase or snake_case names into Title Case labels.
func NameToTitle(name string) string {
	snake := camelWordBoundary.ReplaceAllString(name, "${1}_${2}")
	snake = strings.ToLower(camelLowerToUpper.ReplaceAllString(snake, "${1}_${2}"))
	words := strings.Fields(titleWordSeparator.Replace(snake))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
