// Package kvstore persists JSON documents under fixed keys. It stands in for
// the per-browser key-value storage of the storefront: a Redis instance when
// one is configured, process memory otherwise.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when the key holds no value.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrCorrupt is returned when a stored document cannot be decoded.
	ErrCorrupt = errors.New("kvstore: stored value is not valid json")
)

// Store is the minimal blob surface the storefront needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Keys builds the fixed document keys. RedisStore namespaces them; the memory
// store uses the same layout so keys stay identical across backends.
type Keys interface {
	BlobKey(name string) string
	CartKey(clientKey string) string
	SessionKey(sessionID string) string
	VerificationKey(contactDigest string) string
}

// ReadJSON decodes the document at key into dest. It reports false when the
// key is absent, leaving dest untouched.
func ReadJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}

// WriteJSON encodes value and stores it at key.
func WriteJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
