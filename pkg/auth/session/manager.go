package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
	redisclient "github.com/angelmondragon/shopfront-backend/pkg/redis"
)

// ErrInvalidRefreshToken covers unknown, expired, reused and mismatched tokens alike.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

var errMissingAccessID = errors.New("access id is required")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is the read-only view the auth middleware needs.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Session pairs the access token's jti with the refresh token that can renew it.
type Session struct {
	AccessID     string
	RefreshToken string
	UserID       uuid.UUID
}

// record is the JSON value stored under the access id key.
type record struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// Manager keeps one Redis record per live session. A record outlives its
// access token so an expired token can still be refreshed.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	refresh, access := cfg.RefreshTokenTTL(), cfg.AccessTokenTTL()
	switch {
	case refresh <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case refresh <= access:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", refresh, access)
	}
	return &Manager{store: client, keyer: client, ttl: refresh}, nil
}

// NewAccessID produces the identifier used as both JWT jti and Redis key suffix.
func NewAccessID() string {
	return uuid.NewString()
}

// Issue opens a fresh session for userID.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID) (Session, error) {
	if userID == uuid.Nil {
		return Session{}, errors.New("user id is required")
	}
	return m.open(ctx, userID)
}

// Rotate trades a valid refresh token for a new session. The old record is
// removed first so the same token can never be redeemed twice.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Session, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Session{}, ErrInvalidRefreshToken
	}

	key := m.keyer.AccessSessionKey(oldAccessID)
	current, err := m.load(ctx, key)
	if err != nil {
		return Session{}, err
	}
	if subtle.ConstantTimeCompare([]byte(current.Token), []byte(provided)) != 1 {
		return Session{}, ErrInvalidRefreshToken
	}
	if err := m.store.Del(ctx, key); err != nil {
		return Session{}, fmt.Errorf("retire session: %w", err)
	}
	return m.open(ctx, current.UserID)
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errMissingAccessID
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errMissingAccessID
	}
	_, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	switch {
	case errors.Is(err, redislib.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (m *Manager) open(ctx context.Context, userID uuid.UUID) (Session, error) {
	token, err := randomToken()
	if err != nil {
		return Session{}, err
	}
	raw, err := json.Marshal(record{UserID: userID, Token: token})
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}

	accessID := NewAccessID()
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(raw), m.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{AccessID: accessID, RefreshToken: token, UserID: userID}, nil
}

func (m *Manager) load(ctx context.Context, key string) (record, error) {
	raw, err := m.store.Get(ctx, key)
	switch {
	case errors.Is(err, redislib.Nil):
		return record{}, ErrInvalidRefreshToken
	case err != nil:
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.UserID == uuid.Nil {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
