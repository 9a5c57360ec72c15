// Package naming derives URL-friendly names from Go identifiers.
package naming

import (
	"strings"
	"unicode"
)

// Kebab converts a Go identifier to kebab-case.
// "RecentlyJoined" becomes "recently-joined", "HTTPLog" becomes "http-log".
func Kebab(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Start a new word at a lower->upper boundary, or at the last
			// letter of an acronym run (HTTPLog -> http-log).
			if i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Basename derives a default route basename from a view-set type name.
// A "ViewSet" suffix is dropped first: "WidgetViewSet" becomes "widget".
func Basename(typeName string) string {
	name := strings.TrimSuffix(typeName, "ViewSet")
	if name == "" {
		name = typeName
	}
	return Kebab(name)
}
