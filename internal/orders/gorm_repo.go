package orders

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wirebazaar/wirebazaar-backend/internal/repo"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	"github.com/wirebazaar/wirebazaar-backend/pkg/pagination"
)

// GormRepository stores orders in the orders table.
type GormRepository struct {
	repo.Base
}

// NewGormRepository builds an orders repository bound to the provided DB.
func NewGormRepository(conn *gorm.DB) *GormRepository {
	return &GormRepository{Base: repo.NewBase(conn)}
}

func (r *GormRepository) Create(ctx context.Context, order *Order) error {
	return r.DB(ctx).Create(toModel(*order)).Error
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	var row models.Order
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	order := fromModel(row)
	return &order, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromModels(rows), nil
}

func (r *GormRepository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.DB(ctx).Model(&models.Order{})
	if filters.Status != nil {
		query = query.Where("status = ?", string(*filters.Status))
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", string(*filters.PaymentStatus))
	}
	if term := strings.ToLower(strings.TrimSpace(filters.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ? OR LOWER(customer_phone) LIKE ?",
			like, like, like, like,
		)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	orders := fromModels(rows)
	if len(orders) <= limit {
		return orders, "", nil
	}
	page := orders[:limit]
	return page, pagination.EncodeCursor(cursorOf(page[len(page)-1])), nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Order, error) {
	var updated *Order
	err := r.InTx(ctx, func(tx *gorm.DB) error {
		var row models.Order
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if db.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		order := fromModel(row)
		update.apply(&order)

		changes := map[string]any{
			"status":         string(order.Status),
			"payment_status": string(order.PaymentStatus),
			"updated_at":     order.UpdatedAt,
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		updated = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type bucketRow struct {
	Status        string
	PaymentStatus string
	Count         int
	Amount        float64
}

func (r *GormRepository) Buckets(ctx context.Context) ([]StatusBucket, error) {
	var rows []bucketRow
	err := r.DB(ctx).
		Model(&models.Order{}).
		Select("status, payment_status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Group("status, payment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	buckets := make([]StatusBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, StatusBucket{
			Status:        enums.OrderStatus(row.Status),
			PaymentStatus: enums.PaymentStatus(row.PaymentStatus),
			Count:         row.Count,
			Amount:        decimal.NewFromFloat(row.Amount).Round(2),
		})
	}
	return buckets, nil
}

func fromModels(rows []models.Order) []Order {
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out
}
