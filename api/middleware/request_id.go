package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID echoes a caller supplied X-Request-Id when it looks sane and
// mints a uuid otherwise. The id is attached to every log line of the request.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := inboundRequestID(r)
			w.Header().Set(requestIDHeader, id)
			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func inboundRequestID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if id == "" || len(id) > 128 {
		return uuid.NewString()
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return uuid.NewString()
		}
	}
	return id
}
