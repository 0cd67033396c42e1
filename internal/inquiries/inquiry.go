// Package inquiries records request-a-quote submissions and serves them to the
// shop owner.
package inquiries

import (
	"time"

	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
)

// Inquiry is a stored quote request.
type Inquiry struct {
	ID        string              `json:"id"`
	UserID    *string             `json:"user_id,omitempty"`
	UserType  enums.BuyerType     `json:"user_type"`
	Phone     string              `json:"phone"`
	Verified  bool                `json:"verified"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Address   string              `json:"address"`
	Pincode   string              `json:"pincode"`
	Brand     string              `json:"brand"`
	Color     string              `json:"color"`
	Quantity  int                 `json:"quantity"`
	Unit      enums.UnitType      `json:"unit"`
	Status    enums.InquiryStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Stats summarises inquiries for the back-office dashboard.
type Stats struct {
	Total         int        `json:"total"`
	Verified      int        `json:"verified"`
	UserTypes     int        `json:"user_types"`
	LastCreatedAt *time.Time `json:"last_created_at,omitempty"`
}

func computeStats(items []Inquiry) Stats {
	stats := Stats{Total: len(items)}
	types := map[enums.BuyerType]struct{}{}
	for _, inq := range items {
		if inq.Verified {
			stats.Verified++
		}
		types[inq.UserType] = struct{}{}
		if stats.LastCreatedAt == nil || inq.CreatedAt.After(*stats.LastCreatedAt) {
			created := inq.CreatedAt
			stats.LastCreatedAt = &created
		}
	}
	stats.UserTypes = len(types)
	return stats
}

func toModel(i Inquiry) *models.Inquiry {
	return &models.Inquiry{
		ID:        i.ID,
		UserID:    i.UserID,
		UserType:  string(i.UserType),
		Name:      i.Name,
		Email:     i.Email,
		Phone:     i.Phone,
		Address:   i.Address,
		Pincode:   i.Pincode,
		Brand:     i.Brand,
		Color:     i.Color,
		Quantity:  i.Quantity,
		Unit:      string(i.Unit),
		Verified:  i.Verified,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func fromModel(m models.Inquiry) Inquiry {
	return Inquiry{
		ID:        m.ID,
		UserID:    m.UserID,
		UserType:  enums.BuyerType(m.UserType),
		Phone:     m.Phone,
		Verified:  m.Verified,
		Name:      m.Name,
		Email:     m.Email,
		Address:   m.Address,
		Pincode:   m.Pincode,
		Brand:     m.Brand,
		Color:     m.Color,
		Quantity:  m.Quantity,
		Unit:      enums.UnitType(m.Unit),
		Status:    enums.InquiryStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
