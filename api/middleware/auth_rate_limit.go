package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shopfront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

const maxBufferedBody = 1 << 20

// RateLimitStore counts attempts per scope in a fixed window.
type RateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy caps attempts per client IP and per submitted email
// within one window. A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// attempt is one counter the request has to pass.
type attempt struct {
	dimension string
	value     string
	limit     int
}

func (p AuthRateLimitPolicy) scope(a attempt) string {
	return a.dimension + ":" + p.name + ":" + a.value
}

// AuthRateLimit throttles credential endpoints. Emails are hashed before
// they become part of a counter key.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			attempts := make([]attempt, 0, 2)
			if ip := clientIP(r); policy.ipLimit > 0 && ip != "" {
				attempts = append(attempts, attempt{dimension: "ip", value: ip, limit: policy.ipLimit})
			}
			if policy.emailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxBufferedBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if email := normalizeEmail(extractEmail(body)); email != "" {
					attempts = append(attempts, attempt{dimension: "email", value: hashValue(email), limit: policy.emailLimit})
				}
			}

			for _, a := range attempts {
				allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(a), int64(a.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if !allowed {
					rejectAttempt(ctx, logg, w, policy, a, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectAttempt(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, a attempt, count int64) {
	retryAfter := int(policy.window.Round(time.Second) / time.Second)
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         policy.name,
			"dimension":      a.dimension,
			"key":            a.value,
			"attempts":       count,
			"limit":          a.limit,
			"window_seconds": retryAfter,
		}), "auth.rate_limited")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP takes the left-most X-Forwarded-For hop, then X-Real-IP, then
// the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
