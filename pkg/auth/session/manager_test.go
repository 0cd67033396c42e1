package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
)

func newTestManager(t *testing.T, now *time.Time) (*Manager, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore().WithClock(func() time.Time { return *now })
	manager, err := NewManager(store, kvstore.MemoryKeys{}, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager, store
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	manager, _ := newTestManager(t, &now)

	profile := Profile{ID: "local_1714554000000", Contact: "buyer@example.com", LastLoginAt: now}
	sessionID, err := manager.Create(ctx, profile)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected session id")
	}

	restored, err := manager.Restore(ctx, sessionID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.ID != profile.ID || restored.Contact != profile.Contact || !restored.LastLoginAt.Equal(now) {
		t.Fatalf("unexpected profile %+v", restored)
	}

	ok, err := manager.HasSession(ctx, sessionID)
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, sessionID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := manager.Restore(ctx, sessionID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after revoke, got %v", err)
	}
}

func TestManagerSessionExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	manager, _ := newTestManager(t, &now)

	sessionID, err := manager.Create(ctx, Profile{ID: "u1", Contact: "9876543210"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	now = now.Add(2 * time.Hour)

	ok, err := manager.HasSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if ok {
		t.Fatal("expected session to expire")
	}
}

func TestManagerToleratesCorruptSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	manager, store := newTestManager(t, &now)

	if err := store.Set(ctx, kvstore.MemoryKeys{}.SessionKey("broken"), []byte("{"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := manager.Restore(ctx, "broken"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, kvstore.MemoryKeys{}, time.Hour); err == nil {
		t.Fatal("expected error without store")
	}
	if _, err := NewManager(kvstore.NewMemoryStore(), kvstore.MemoryKeys{}, 0); err == nil {
		t.Fatal("expected error without ttl")
	}
	now := time.Now()
	manager, _ := newTestManager(t, &now)
	if _, err := manager.Create(context.Background(), Profile{}); err == nil {
		t.Fatal("expected error for empty profile")
	}
	if _, err := manager.HasSession(context.Background(), " "); err == nil {
		t.Fatal("expected error for blank session id")
	}
}
