package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
)

var (
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	gstPattern     = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

// Service resolves identities and manages profiles.
type Service interface {
	Resolve(ctx context.Context, contact string) (*Identity, error)
	SaveProfile(ctx context.Context, userID string, input ProfileInput) (*Profile, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}

// ProfileInput is the editable part of a profile.
type ProfileInput struct {
	FullName     string
	Email        string
	PhoneNumber  string
	Address      string
	City         string
	State        string
	Pincode      string
	CompanyName  string
	BusinessType string
	GSTNumber    string
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the users service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Resolve(ctx context.Context, contact string) (*Identity, error) {
	identity, err := s.repo.Resolve(ctx, contact, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to create user account. Please try again.")
	}
	return identity, nil
}

// SaveProfile replaces the user's profile and marks it completed.
func (s *service) SaveProfile(ctx context.Context, userID string, input ProfileInput) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	profile := Profile{
		UserID:           userID,
		FullName:         strings.TrimSpace(input.FullName),
		Email:            strings.TrimSpace(input.Email),
		PhoneNumber:      strings.TrimSpace(input.PhoneNumber),
		Address:          strings.TrimSpace(input.Address),
		City:             strings.TrimSpace(input.City),
		State:            strings.TrimSpace(input.State),
		Pincode:          strings.TrimSpace(input.Pincode),
		CompanyName:      strings.TrimSpace(input.CompanyName),
		BusinessType:     strings.TrimSpace(input.BusinessType),
		GSTNumber:        strings.ToUpper(strings.TrimSpace(input.GSTNumber)),
		ProfileCompleted: true,
		UpdatedAt:        s.now().UTC(),
	}
	if profile.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if profile.Pincode != "" && !pincodePattern.MatchString(profile.Pincode) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
	}
	if profile.GSTNumber != "" && !gstPattern.MatchString(profile.GSTNumber) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gst number is not valid")
	}
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return &profile, nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}
