// Package users resolves verified contacts to user identities and keeps the
// optional shipping and business profile of each user.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/wirebazaar/wirebazaar-backend/pkg/db/models"
)

// ErrNotFound is returned when a user has no stored profile.
var ErrNotFound = errors.New("users: not found")

// Identity is a user known by a verified contact.
type Identity struct {
	ID          string    `json:"id"`
	Contact     string    `json:"contact"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// Profile is the shipping and business detail form of a user.
type Profile struct {
	UserID           string    `json:"user_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	Pincode          string    `json:"pincode"`
	CompanyName      string    `json:"company_name"`
	BusinessType     string    `json:"business_type"`
	GSTNumber        string    `json:"gst_number"`
	ProfileCompleted bool      `json:"profile_completed"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Repository stores identities and profiles.
type Repository interface {
	// Resolve returns the identity for contact, creating it on first sight and
	// stamping the login time otherwise.
	Resolve(ctx context.Context, contact string, now time.Time) (*Identity, error)
	SaveProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}

func profileToModel(p Profile) *models.UserProfile {
	return &models.UserProfile{
		UserID:           p.UserID,
		FullName:         p.FullName,
		Email:            p.Email,
		PhoneNumber:      p.PhoneNumber,
		Address:          p.Address,
		City:             p.City,
		State:            p.State,
		Pincode:          p.Pincode,
		CompanyName:      p.CompanyName,
		BusinessType:     p.BusinessType,
		GSTNumber:        p.GSTNumber,
		ProfileCompleted: p.ProfileCompleted,
		UpdatedAt:        p.UpdatedAt,
	}
}

func profileFromModel(m models.UserProfile) Profile {
	return Profile{
		UserID:           m.UserID,
		FullName:         m.FullName,
		Email:            m.Email,
		PhoneNumber:      m.PhoneNumber,
		Address:          m.Address,
		City:             m.City,
		State:            m.State,
		Pincode:          m.Pincode,
		CompanyName:      m.CompanyName,
		BusinessType:     m.BusinessType,
		GSTNumber:        m.GSTNumber,
		ProfileCompleted: m.ProfileCompleted,
		UpdatedAt:        m.UpdatedAt,
	}
}
