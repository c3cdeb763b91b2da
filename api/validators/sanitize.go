package validators

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

// QueryString reads a trimmed query value capped at maxRunes characters.
func QueryString(r *http.Request, key string, maxRunes int) string {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if maxRunes <= 0 || utf8.RuneCountInString(value) <= maxRunes {
		return value
	}
	return strings.TrimSpace(string([]rune(value)[:maxRunes]))
}
