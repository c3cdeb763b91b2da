package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerIssueAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()

	issued, err := manager.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.AccessID == "" || issued.RefreshToken == "" {
		t.Fatalf("expected populated session, got %+v", issued)
	}

	if _, err := manager.Rotate(ctx, issued.AccessID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	rotated, err := manager.Rotate(ctx, issued.AccessID, issued.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated.UserID != userID {
		t.Fatalf("expected rotated session to keep user %s, got %s", userID, rotated.UserID)
	}
	if _, exists := store.data[store.AccessSessionKey(issued.AccessID)]; exists {
		t.Fatalf("old access key left behind")
	}

	ok, err := manager.HasSession(ctx, rotated.AccessID)
	if err != nil || !ok {
		t.Fatalf("expected rotated session to be active, ok=%v err=%v", ok, err)
	}

	if _, err := manager.Rotate(ctx, issued.AccessID, issued.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected replayed refresh token to fail, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	issued, err := manager.Issue(ctx, uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := manager.Revoke(ctx, issued.AccessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err := manager.HasSession(ctx, issued.AccessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestManagerIssueRequiresUser(t *testing.T) {
	manager := newTestManager(newMockStore())
	if _, err := manager.Issue(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil user id")
	}
}
