package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
)

// ErrNoSession is returned when the session id does not resolve to a stored profile.
var ErrNoSession = errors.New("session not found")

// Profile is the signed-in customer as held by a session.
type Profile struct {
	ID          string    `json:"id"`
	Contact     string    `json:"contact"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager stores customer sessions. A session starts at login (Create), is
// re-established on every request (Restore), and ends at logout (Revoke).
type Manager struct {
	store kvstore.Store
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// NewManager constructs a session manager over the key-value store.
func NewManager(store kvstore.Store, keyer sessionKeyer, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("session keyer is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: store, keyer: keyer, ttl: ttl}, nil
}

// TTL reports how long a session lives after creation.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create persists profile under a fresh session id and returns the id.
func (m *Manager) Create(ctx context.Context, profile Profile) (string, error) {
	if strings.TrimSpace(profile.ID) == "" {
		return "", fmt.Errorf("profile id is required")
	}
	sessionID := NewSessionID()
	if err := kvstore.WriteJSON(ctx, m.store, m.keyer.SessionKey(sessionID), profile, m.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Restore loads the profile bound to sessionID.
func (m *Manager) Restore(ctx context.Context, sessionID string) (*Profile, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSession
	}
	var profile Profile
	found, err := kvstore.ReadJSON(ctx, m.store, m.keyer.SessionKey(sessionID), &profile)
	if err != nil {
		if errors.Is(err, kvstore.ErrCorrupt) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if !found || profile.ID == "" {
		return nil, ErrNoSession
	}
	return &profile, nil
}

// Revoke deletes the stored session.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// HasSession reports whether sessionID still resolves to a profile.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, fmt.Errorf("session id is required")
	}
	if _, err := m.Restore(ctx, sessionID); err != nil {
		if errors.Is(err, ErrNoSession) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewSessionID produces the identifier used as the JWT jti and the storage key.
func NewSessionID() string {
	return uuid.NewString()
}
