package validators

import (
	"net/http"
	"strings"
)

// TokenCookieName carries the access token for browser clients.
const TokenCookieName = "token"

// ExtractAccessToken prefers the Authorization bearer header and falls back to the token cookie.
func ExtractAccessToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
