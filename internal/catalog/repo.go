package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wirebazaar/wirebazaar-backend/internal/repo"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
)

// ErrNotFound is returned when no product carries the requested id.
var ErrNotFound = errors.New("catalog: product not found")

// productsBlob is the document name of the persisted catalog override.
const productsBlob = "products"

// Repository persists the catalog.
type Repository interface {
	All(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Save(ctx context.Context, product Product) error
	Delete(ctx context.Context, id string) error
}

type blobKeyer interface {
	BlobKey(name string) string
}

// BlobRepository keeps the catalog as one JSON document. Until the owner
// edits something the document is absent and the seed catalog is served.
type BlobRepository struct {
	store kvstore.Store
	key   string
	mu    sync.Mutex
}

// NewBlobRepository builds a key-value backed repository.
func NewBlobRepository(store kvstore.Store, keys blobKeyer) *BlobRepository {
	return &BlobRepository{store: store, key: keys.BlobKey(productsBlob)}
}

func (r *BlobRepository) load(ctx context.Context) ([]Product, error) {
	var products []Product
	found, err := kvstore.ReadJSON(ctx, r.store, r.key, &products)
	if errors.Is(err, kvstore.ErrCorrupt) {
		return Seed(), nil
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return Seed(), nil
	}
	return products, nil
}

// All returns every product, active or not, in catalog order.
func (r *BlobRepository) All(ctx context.Context) ([]Product, error) {
	return r.load(ctx)
}

// FindByID returns the product with the given id.
func (r *BlobRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrNotFound
}

// Save replaces the product with the same id, or appends it.
func (r *BlobRepository) Save(ctx context.Context, product Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range products {
		if products[i].ID == product.ID {
			products[i] = product
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, product)
	}
	return kvstore.WriteJSON(ctx, r.store, r.key, products, 0)
}

// Delete removes the product with the given id.
func (r *BlobRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := products[:0]
	removed := false
	for _, p := range products {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return ErrNotFound
	}
	return kvstore.WriteJSON(ctx, r.store, r.key, kept, 0)
}

// GormRepository keeps the catalog in the products table.
type GormRepository struct {
	repo.Base
}

// NewGormRepository builds a repository tied to the provided GORM DB.
func NewGormRepository(conn *gorm.DB) *GormRepository {
	return &GormRepository{Base: repo.NewBase(conn)}
}

// EnsureSeeded inserts the seed catalog when the table is empty.
func (r *GormRepository) EnsureSeeded(ctx context.Context) (int, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	seed := Seed()
	rows := make([]*models.Product, 0, len(seed))
	for _, p := range seed {
		rows = append(rows, toModel(p))
	}
	if err := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("seed products: %w", err)
	}
	return len(rows), nil
}

// All returns every product ordered by creation.
func (r *GormRepository) All(ctx context.Context) ([]Product, error) {
	var rows []models.Product
	if err := r.DB(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, fromModel(row))
	}
	return products, nil
}

// FindByID returns the product with the given id.
func (r *GormRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	var row models.Product
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	product := fromModel(row)
	return &product, nil
}

// Save inserts the product or overwrites every column of an existing row.
func (r *GormRepository) Save(ctx context.Context, product Product) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(toModel(product)).Error
}

// Delete removes the product row.
func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
