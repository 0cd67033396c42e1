package orders

import (
	"context"
	"errors"

	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/pagination"
)

// CachedRepository fronts the authoritative repository with the key-value
// cache. Writes go to the primary and are then mirrored into the cache; reads
// use the cache only when the primary fails with something other than a
// missing row.
type CachedRepository struct {
	primary Repository
	cache   *BlobRepository
	logg    *logger.Logger
}

// NewCachedRepository wraps primary with cache.
func NewCachedRepository(primary Repository, cache *BlobRepository, logg *logger.Logger) *CachedRepository {
	if logg == nil {
		logg = logger.Nop()
	}
	return &CachedRepository{primary: primary, cache: cache, logg: logg}
}

func (r *CachedRepository) Create(ctx context.Context, order *Order) error {
	if err := r.primary.Create(ctx, order); err != nil {
		return err
	}
	r.mirror(ctx, *order)
	return nil
}

func (r *CachedRepository) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Order, error) {
	order, err := r.primary.UpdateStatus(ctx, id, update)
	if err != nil {
		return nil, err
	}
	r.mirror(ctx, *order)
	return order, nil
}

func (r *CachedRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	order, err := r.primary.FindByID(ctx, id)
	if !r.fallback(ctx, err) {
		return order, err
	}
	return r.cache.FindByID(ctx, id)
}

func (r *CachedRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	orders, err := r.primary.ListByUser(ctx, userID)
	if !r.fallback(ctx, err) {
		return orders, err
	}
	return r.cache.ListByUser(ctx, userID)
}

func (r *CachedRepository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]Order, string, error) {
	orders, next, err := r.primary.List(ctx, filters, params)
	if !r.fallback(ctx, err) {
		return orders, next, err
	}
	return r.cache.List(ctx, filters, params)
}

func (r *CachedRepository) Buckets(ctx context.Context) ([]StatusBucket, error) {
	buckets, err := r.primary.Buckets(ctx)
	if !r.fallback(ctx, err) {
		return buckets, err
	}
	return r.cache.Buckets(ctx)
}

func (r *CachedRepository) mirror(ctx context.Context, order Order) {
	if err := r.cache.Put(ctx, order); err != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{"order_id": order.ID, "error": err.Error()})
		r.logg.Warn(ctx, "orders.cache_mirror_failed")
	}
}

func (r *CachedRepository) fallback(ctx context.Context, err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "orders.cache_fallback")
	return true
}
