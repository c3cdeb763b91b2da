package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

func fieldError(field, msg string, extra ...any) error {
	details := map[string]any{"field": field}
	for i := 0; i+1 < len(extra); i += 2 {
		if k, ok := extra[i].(string); ok {
			details[k] = extra[i+1]
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// ParseQueryInt returns fallback when key is absent and rejects values outside [lo, hi].
func ParseQueryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, fieldError(key, "query parameter must be numeric")
	case n < lo || n > hi:
		return 0, fieldError(key, "query parameter out of range", "min", lo, "max", hi)
	}
	return n, nil
}

// ParseQueryDecimal returns nil when key is absent.
func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	switch {
	case err != nil:
		return nil, fieldError(key, "query parameter must be a decimal")
	case d.IsNegative():
		return nil, fieldError(key, "query parameter cannot be negative")
	}
	return &d, nil
}

// ParseUUIDParam reads a chi URL param as a non-nil UUID.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fieldError(key, "invalid id")
	}
	return id, nil
}
