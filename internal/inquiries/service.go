package inquiries

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wirebazaar/wirebazaar-backend/internal/verification"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/metrics"
)

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Service manages quote inquiries.
type Service interface {
	Submit(ctx context.Context, input SubmitInput, caller *Caller) (*Inquiry, error)
	List(ctx context.Context) ([]Inquiry, error)
	ListForUser(ctx context.Context, userID string) ([]Inquiry, error)
	Stats(ctx context.Context) (*Stats, error)
	UpdateStatus(ctx context.Context, id string, status enums.InquiryStatus) (*Inquiry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// SubmitInput is the request-a-quote form.
type SubmitInput struct {
	UserType enums.BuyerType
	Phone    string
	Name     string
	Email    string
	Address  string
	Pincode  string
	Brand    string
	Color    string
	Quantity int
	Unit     enums.UnitType
}

// Caller is the signed-in customer submitting the form, if any.
type Caller struct {
	UserID  string
	Contact string
}

type service struct {
	repo    Repository
	metrics *metrics.StorefrontMetrics
	logg    *logger.Logger
	now     func() time.Time
	newID   func() string
}

// NewService constructs the inquiry service.
func NewService(repo Repository, m *metrics.StorefrontMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inquiries repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, metrics: m, logg: logg, now: time.Now, newID: uuid.NewString}, nil
}

// Submit stores the inquiry. It is marked verified only when the caller's
// session contact matches the inquiry phone or email.
func (s *service) Submit(ctx context.Context, input SubmitInput, caller *Caller) (*Inquiry, error) {
	inquiry, err := s.normalize(input)
	if err != nil {
		return nil, err
	}
	if caller != nil && caller.UserID != "" {
		userID := caller.UserID
		inquiry.UserID = &userID
		inquiry.Verified = contactMatches(caller.Contact, inquiry.Phone, inquiry.Email)
	}

	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store inquiry")
	}
	s.metrics.IncInquiry(inquiry.Verified)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"inquiry_id": inquiry.ID,
		"user_type":  string(inquiry.UserType),
		"verified":   inquiry.Verified,
	})
	s.logg.Info(ctx, "inquiry.submitted")
	return inquiry, nil
}

func contactMatches(sessionContact, phone, email string) bool {
	contact, err := verification.ParseContact(sessionContact)
	if err != nil {
		return false
	}
	if p, err := verification.ParseContact(phone); err == nil && p == contact {
		return true
	}
	if e, err := verification.ParseContact(email); err == nil && e == contact {
		return true
	}
	return false
}

func (s *service) normalize(input SubmitInput) (*Inquiry, error) {
	now := s.now().UTC()
	inquiry := &Inquiry{
		ID:        s.newID(),
		UserType:  input.UserType,
		Phone:     strings.TrimSpace(input.Phone),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Address:   strings.TrimSpace(input.Address),
		Pincode:   strings.TrimSpace(input.Pincode),
		Brand:     strings.TrimSpace(input.Brand),
		Color:     strings.TrimSpace(input.Color),
		Quantity:  input.Quantity,
		Unit:      input.Unit,
		Status:    enums.InquiryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	problems := map[string]string{}
	if !inquiry.UserType.IsValid() {
		problems["user_type"] = "select who you are buying for"
	}
	if !verification.IsValidPhone(inquiry.Phone) {
		problems["phone"] = "enter a valid 10-digit mobile number"
	}
	if inquiry.Name == "" {
		problems["name"] = "name is required"
	}
	if inquiry.Email != "" && !verification.IsValidEmail(inquiry.Email) {
		problems["email"] = "enter a valid email address"
	}
	if inquiry.Address == "" {
		problems["address"] = "address is required"
	}
	if !pincodePattern.MatchString(inquiry.Pincode) {
		problems["pincode"] = "pincode must be 6 digits"
	}
	if inquiry.Brand == "" {
		problems["brand"] = "brand is required"
	}
	if inquiry.Color == "" {
		problems["color"] = "colour is required"
	}
	if inquiry.Quantity <= 0 {
		problems["quantity"] = "Please enter a valid quantity"
	}
	if !inquiry.Unit.IsValid() {
		problems["unit"] = "unit must be metres or coils"
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry is incomplete").WithDetails(problems)
	}
	return inquiry, nil
}

func (s *service) List(ctx context.Context) ([]Inquiry, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inquiries")
	}
	return items, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]Inquiry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inquiries")
	}
	return items, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := computeStats(items)
	return &stats, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status enums.InquiryStatus) (*Inquiry, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid inquiry status %q", status).
			WithDetails(map[string]any{"allowed": enums.InquiryStatuses()})
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status, s.now().UTC())
	if err != nil {
		return nil, s.mapErr(err, "update inquiry")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err, "delete inquiry")
	}
	return nil
}

func (s *service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear inquiries")
	}
	s.logg.Info(ctx, "inquiries.cleared")
	return nil
}

func (s *service) mapErr(err error, action string) error {
	if errors.Is(err, ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
