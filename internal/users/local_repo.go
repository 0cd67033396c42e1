package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
)

const profilesBlob = "profiles"

type blobKeyer interface {
	BlobKey(name string) string
}

// LocalRepository serves deployments without a database. Identities are
// synthesized per login as "local_<epoch ms>" and profiles live in one
// key-value document keyed by user id.
type LocalRepository struct {
	store kvstore.Store
	key   string
	mu    sync.Mutex
}

// NewLocalRepository builds the key-value backed users repository.
func NewLocalRepository(store kvstore.Store, keys blobKeyer) *LocalRepository {
	return &LocalRepository{store: store, key: keys.BlobKey(profilesBlob)}
}

func (r *LocalRepository) Resolve(_ context.Context, contact string, now time.Time) (*Identity, error) {
	return &Identity{
		ID:          fmt.Sprintf("local_%d", now.UnixMilli()),
		Contact:     contact,
		LastLoginAt: now,
	}, nil
}

func (r *LocalRepository) load(ctx context.Context) (map[string]Profile, error) {
	profiles := map[string]Profile{}
	if _, err := kvstore.ReadJSON(ctx, r.store, r.key, &profiles); err != nil {
		if errors.Is(err, kvstore.ErrCorrupt) {
			return map[string]Profile{}, nil
		}
		return nil, err
	}
	return profiles, nil
}

func (r *LocalRepository) SaveProfile(ctx context.Context, profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load(ctx)
	if err != nil {
		return err
	}
	profiles[profile.UserID] = profile
	return kvstore.WriteJSON(ctx, r.store, r.key, profiles, 0)
}

func (r *LocalRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	profiles, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	profile, ok := profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &profile, nil
}
