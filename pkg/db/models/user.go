package models

import "time"

// User is an identity keyed by its verified contact (email or mobile number).
type User struct {
	ID          string    `gorm:"primaryKey;type:text"`
	Contact     string    `gorm:"column:contact;not null;uniqueIndex"`
	LastLoginAt time.Time `gorm:"column:last_login_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

// UserProfile holds the optional shipping and business details of a user.
type UserProfile struct {
	UserID           string    `gorm:"primaryKey;column:user_id;type:text"`
	FullName         string    `gorm:"column:full_name"`
	Email            string    `gorm:"column:email"`
	PhoneNumber      string    `gorm:"column:phone_number"`
	Address          string    `gorm:"column:address"`
	City             string    `gorm:"column:city"`
	State            string    `gorm:"column:state"`
	Pincode          string    `gorm:"column:pincode"`
	CompanyName      string    `gorm:"column:company_name"`
	BusinessType     string    `gorm:"column:business_type"`
	GSTNumber        string    `gorm:"column:gst_number"`
	ProfileCompleted bool      `gorm:"column:profile_completed;not null;default:false"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserProfile) TableName() string { return "user_profiles" }
