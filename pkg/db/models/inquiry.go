package models

import "time"

// Inquiry is a request-a-quote submission.
type Inquiry struct {
	ID        string    `gorm:"primaryKey;type:text"`
	UserID    *string   `gorm:"column:user_id;index"`
	UserType  string    `gorm:"column:user_type;not null"`
	Name      string    `gorm:"column:contact_name;not null"`
	Email     string    `gorm:"column:contact_email"`
	Phone     string    `gorm:"column:contact_phone;not null"`
	Address   string    `gorm:"column:address"`
	Pincode   string    `gorm:"column:pincode"`
	Brand     string    `gorm:"column:product_name"`
	Color     string    `gorm:"column:product_specification"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Unit      string    `gorm:"column:unit;not null"`
	Verified  bool      `gorm:"column:verified;not null;default:false"`
	Status    string    `gorm:"column:status;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Inquiry) TableName() string { return "inquiries" }
