package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/shopfront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/shopfront-backend/pkg/redis"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	inFlightTTL           = time.Minute
	inFlightMarker        = "in-flight"
)

type idempotencyRule struct {
	ttl      time.Duration
	required bool
}

// Keyed by "METHOD pattern" using the chi route pattern, so the middleware
// must run after routing has resolved the full path.
var idempotencyRules = map[string]idempotencyRule{
	http.MethodPost + " /api/auth/register": {ttl: defaultIdempotencyTTL, required: true},
	http.MethodPost + " /api/cart/items":    {ttl: defaultIdempotencyTTL},
	http.MethodPost + " /api/products":      {ttl: defaultIdempotencyTTL},
}

func matchRule(method, pattern string) (idempotencyRule, bool) {
	rule, ok := idempotencyRules[method+" "+pattern]
	return rule, ok
}

// matchedPattern is the chi route pattern, or the raw path outside a router.
func matchedPattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// storedResponse is what a replay writes back.
type storedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

func (s storedResponse) replay(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

// Idempotency replays the first response for a repeated Idempotency-Key
// from the same user on the same route. A key reused with another body is
// rejected. Server errors are not stored so the client can retry.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r.Method, matchedPattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				if rule.required {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, idempotencyHeader+" header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBufferedBody))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintBody(body)
			key := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, clientKey)

			raw, err := store.Get(ctx, key)
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup"))
				return
			case raw == inFlightMarker:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this idempotency key is still in progress"))
				return
			default:
				var prior storedResponse
				if err := json.Unmarshal([]byte(raw), &prior); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency record unreadable"))
					return
				}
				if prior.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request body"))
					return
				}
				prior.replay(w)
				return
			}

			claimed, err := store.SetNX(ctx, key, inFlightMarker, inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency claim"))
				return
			}
			if !claimed {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this idempotency key is still in progress"))
				return
			}

			var captured bytes.Buffer
			ww := wrap(w, r)
			ww.Tee(&captured)
			next.ServeHTTP(ww, r)
			status := statusOf(ww)

			// detached so a client disconnect does not leave the claim behind
			storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := store.Del(storeCtx, key); err != nil {
				logFailure(storeCtx, logg, "idempotency.release_failed", err)
				return
			}
			if status >= http.StatusInternalServerError {
				return
			}

			record, err := json.Marshal(storedResponse{
				Fingerprint: fingerprint,
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        captured.Bytes(),
			})
			if err == nil {
				_, err = store.SetNX(storeCtx, key, string(record), rule.ttl)
			}
			if err != nil {
				logFailure(storeCtx, logg, "idempotency.store_failed", err)
			}
		})
	}
}

func fingerprintBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func logFailure(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}
