package redis

import "strings"

// All keys live under "sf:" followed by a kind and its parts.
const keyNamespace = "sf"

const (
	kindIdempotency = "idempotency"
	kindRateLimit   = "rate_limit"
	kindSession     = "session"
	kindLock        = "lock"
)

func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(kindIdempotency, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return joinKey(kindRateLimit, scope)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return joinKey(kindSession, "access", accessID)
}

// LockKey builds e.g. sf:lock:cart:<user>.
func (c *Client) LockKey(parts ...string) string {
	return joinKey(kindLock, parts...)
}

// joinKey drops blank parts so optional segments never yield "::".
func joinKey(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	b.WriteByte(':')
	b.WriteString(kind)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
