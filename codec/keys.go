package codec

import (
	"strings"
	"unicode"
)

// toSnakeCase converts a Go field name to snake_case. Runs of capitals are
// treated as one word ("HTTPStatus" becomes "http_status").
func toSnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(runes) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1]) && runes[i-1] != '_'
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// effectiveKey returns the JSON object key for a struct field given its name,
// json tag name (empty when untagged), and the coding's key strategy.
func (c Coding) effectiveKey(fieldName, tagName string) string {
	if tagName != "" {
		return tagName
	}
	if c.Keys == KeysSnakeCase {
		return toSnakeCase(fieldName)
	}
	return fieldName
}
