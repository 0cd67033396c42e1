package orders

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
	"github.com/wirebazaar/wirebazaar-backend/pkg/pagination"
)

type blobKeyer interface {
	BlobKey(name string) string
}

// BlobRepository keeps every order in one key-value document. It is the
// authoritative store of a local deployment and the offline cache of a
// remote one.
type BlobRepository struct {
	store kvstore.Store
	key   string
	mu    sync.Mutex
}

// NewBlobRepository builds a key-value backed order repository.
func NewBlobRepository(store kvstore.Store, keys blobKeyer) *BlobRepository {
	return &BlobRepository{store: store, key: keys.BlobKey(ordersBlob)}
}

func (r *BlobRepository) load(ctx context.Context) ([]Order, error) {
	var orders []Order
	if _, err := kvstore.ReadJSON(ctx, r.store, r.key, &orders); err != nil {
		if errors.Is(err, kvstore.ErrCorrupt) {
			return nil, nil
		}
		return nil, err
	}
	return orders, nil
}

func (r *BlobRepository) save(ctx context.Context, orders []Order) error {
	if orders == nil {
		orders = []Order{}
	}
	return kvstore.WriteJSON(ctx, r.store, r.key, orders, 0)
}

// Create prepends the order.
func (r *BlobRepository) Create(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	orders = append([]Order{*order}, orders...)
	return r.save(ctx, orders)
}

// Put inserts or replaces an order, keeping newest-first order.
func (r *BlobRepository) Put(ctx context.Context, order Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range orders {
		if orders[i].ID == order.ID {
			orders[i] = order
			replaced = true
			break
		}
	}
	if !replaced {
		orders = append(orders, order)
		sortNewestFirst(orders)
	}
	return r.save(ctx, orders)
}

// ReplaceAll overwrites the document with orders.
func (r *BlobRepository) ReplaceAll(ctx context.Context, orders []Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := append([]Order{}, orders...)
	sortNewestFirst(sorted)
	return r.save(ctx, sorted)
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// FindByID returns the order with the given id.
func (r *BlobRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrNotFound
}

// ListByUser returns the orders placed by userID.
func (r *BlobRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0)
	for _, o := range orders {
		if o.BelongsTo(userID) {
			out = append(out, o)
		}
	}
	return out, nil
}

// List pages through the orders matching filters.
func (r *BlobRepository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]Order, string, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, "", err
	}
	matched := make([]Order, 0, len(orders))
	for _, o := range orders {
		if filters.matches(o) {
			matched = append(matched, o)
		}
	}
	return pagination.Slice(matched, params, cursorOf)
}

// UpdateStatus applies update to the stored order.
func (r *BlobRepository) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			update.apply(&orders[i])
			if err := r.save(ctx, orders); err != nil {
				return nil, err
			}
			updated := orders[i]
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

// Buckets aggregates the stored orders by status pair.
func (r *BlobRepository) Buckets(ctx context.Context) ([]StatusBucket, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return bucketize(orders), nil
}
