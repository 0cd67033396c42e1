package inquiries

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/wirebazaar/wirebazaar-backend/internal/repo"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

// ErrNotFound is returned when no inquiry carries the requested id.
var ErrNotFound = errors.New("inquiries: inquiry not found")

const inquiriesBlob = "inquiries"

// Repository persists inquiries. Lists are newest first.
type Repository interface {
	Create(ctx context.Context, inquiry *Inquiry) error
	All(ctx context.Context) ([]Inquiry, error)
	ListByUser(ctx context.Context, userID string) ([]Inquiry, error)
	UpdateStatus(ctx context.Context, id string, status enums.InquiryStatus, at time.Time) (*Inquiry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type blobKeyer interface {
	BlobKey(name string) string
}

// BlobRepository keeps every inquiry in one key-value document.
type BlobRepository struct {
	store kvstore.Store
	key   string
	mu    sync.Mutex
}

// NewBlobRepository builds a key-value backed inquiry repository.
func NewBlobRepository(store kvstore.Store, keys blobKeyer) *BlobRepository {
	return &BlobRepository{store: store, key: keys.BlobKey(inquiriesBlob)}
}

func (r *BlobRepository) load(ctx context.Context) ([]Inquiry, error) {
	var items []Inquiry
	if _, err := kvstore.ReadJSON(ctx, r.store, r.key, &items); err != nil {
		if errors.Is(err, kvstore.ErrCorrupt) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

func (r *BlobRepository) save(ctx context.Context, items []Inquiry) error {
	if items == nil {
		items = []Inquiry{}
	}
	return kvstore.WriteJSON(ctx, r.store, r.key, items, 0)
}

func (r *BlobRepository) Create(ctx context.Context, inquiry *Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	items = append([]Inquiry{*inquiry}, items...)
	return r.save(ctx, items)
}

// Put inserts or replaces an inquiry.
func (r *BlobRepository) Put(ctx context.Context, inquiry Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == inquiry.ID {
			items[i] = inquiry
			return r.save(ctx, items)
		}
	}
	items = append(items, inquiry)
	sortNewestFirst(items)
	return r.save(ctx, items)
}

// ReplaceAll overwrites the document with items.
func (r *BlobRepository) ReplaceAll(ctx context.Context, items []Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := append([]Inquiry{}, items...)
	sortNewestFirst(sorted)
	return r.save(ctx, sorted)
}

func sortNewestFirst(items []Inquiry) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func (r *BlobRepository) All(ctx context.Context) ([]Inquiry, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Inquiry{}
	}
	return items, nil
}

func (r *BlobRepository) ListByUser(ctx context.Context, userID string) ([]Inquiry, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Inquiry, 0)
	for _, inq := range items {
		if inq.UserID != nil && *inq.UserID == userID {
			out = append(out, inq)
		}
	}
	return out, nil
}

func (r *BlobRepository) UpdateStatus(ctx context.Context, id string, status enums.InquiryStatus, at time.Time) (*Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			items[i].Status = status
			items[i].UpdatedAt = at
			if err := r.save(ctx, items); err != nil {
				return nil, err
			}
			updated := items[i]
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

func (r *BlobRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := make([]Inquiry, 0, len(items))
	for _, inq := range items {
		if inq.ID != id {
			kept = append(kept, inq)
		}
	}
	if len(kept) == len(items) {
		return ErrNotFound
	}
	return r.save(ctx, kept)
}

func (r *BlobRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, nil)
}

// GormRepository stores inquiries in the inquiries table.
type GormRepository struct {
	repo.Base
}

// NewGormRepository builds an inquiry repository bound to the provided DB.
func NewGormRepository(conn *gorm.DB) *GormRepository {
	return &GormRepository{Base: repo.NewBase(conn)}
}

func (r *GormRepository) Create(ctx context.Context, inquiry *Inquiry) error {
	return r.DB(ctx).Create(toModel(*inquiry)).Error
}

func (r *GormRepository) All(ctx context.Context) ([]Inquiry, error) {
	return r.find(r.DB(ctx))
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]Inquiry, error) {
	return r.find(r.DB(ctx).Where("user_id = ?", userID))
}

func (r *GormRepository) find(query *gorm.DB) ([]Inquiry, error) {
	var rows []models.Inquiry
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Inquiry, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id string, status enums.InquiryStatus, at time.Time) (*Inquiry, error) {
	result := r.DB(ctx).
		Model(&models.Inquiry{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": at})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var row models.Inquiry
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	inquiry := fromModel(row)
	return &inquiry, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.Inquiry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) Clear(ctx context.Context) error {
	return r.DB(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Inquiry{}).Error
}

// CachedRepository fronts the authoritative repository with the key-value
// cache, mirroring every successful write.
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

func (r *CachedRepository) Create(ctx context.Context, inquiry *Inquiry) error {
	if err := r.primary.Create(ctx, inquiry); err != nil {
		return err
	}
	r.mirror(ctx, "put", r.cache.Put(ctx, *inquiry))
	return nil
}

func (r *CachedRepository) All(ctx context.Context) ([]Inquiry, error) {
	items, err := r.primary.All(ctx)
	if !r.fallback(ctx, err) {
		return items, err
	}
	return r.cache.All(ctx)
}

func (r *CachedRepository) ListByUser(ctx context.Context, userID string) ([]Inquiry, error) {
	items, err := r.primary.ListByUser(ctx, userID)
	if !r.fallback(ctx, err) {
		return items, err
	}
	return r.cache.ListByUser(ctx, userID)
}

func (r *CachedRepository) UpdateStatus(ctx context.Context, id string, status enums.InquiryStatus, at time.Time) (*Inquiry, error) {
	updated, err := r.primary.UpdateStatus(ctx, id, status, at)
	if err != nil {
		return nil, err
	}
	r.mirror(ctx, "put", r.cache.Put(ctx, *updated))
	return updated, nil
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.primary.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		r.mirror(ctx, "delete", err)
	}
	return nil
}

func (r *CachedRepository) Clear(ctx context.Context) error {
	if err := r.primary.Clear(ctx); err != nil {
		return err
	}
	r.mirror(ctx, "clear", r.cache.Clear(ctx))
	return nil
}

func (r *CachedRepository) mirror(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	ctx = r.logg.WithFields(ctx, map[string]any{"op": op, "error": err.Error()})
	r.logg.Warn(ctx, "inquiries.cache_mirror_failed")
}

func (r *CachedRepository) fallback(ctx context.Context, err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) || ctx.Err() != nil {
		return false
	}
	r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "inquiries.cache_fallback")
	return true
}
