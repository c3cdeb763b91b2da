package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/angelmondragon/shopfront-backend/pkg/redis"
	"github.com/google/uuid"
)

const (
	defaultLockTTL      = 10 * time.Second
	defaultPollInterval = 25 * time.Millisecond
	releaseTimeout      = 2 * time.Second
)

// LockKey is the per-user mutation lock key.
func LockKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

// LocalLocker is an in-process keyed mutex. Entries are reference counted so
// idle keys do not accumulate.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker constructs an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{entries: map[string]*lockEntry{}}
}

// Lock blocks until key is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(key, entry)
		})
	}, nil
}

func (l *LocalLocker) release(key string, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RedisLocker implements Locker using Redis SET NX PX with an owner token.
// Release only deletes the key while this owner still holds it.
type RedisLocker struct {
	client redisclient.LockStore
	ttl    time.Duration
	poll   time.Duration
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(client redisclient.LockStore, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, poll: defaultPollInterval}, nil
}

// Lock polls until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	redisKey := l.client.LockKey(key)
	owner := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, owner, l.ttl)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("setnx: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			// An expired lock may already belong to someone else; DeleteIfOwner leaves it alone.
			_, _ = l.client.DeleteIfOwner(releaseCtx, redisKey, owner)
		})
	}, nil
}
