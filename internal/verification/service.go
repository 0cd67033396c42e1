// Package verification issues and checks one-time codes that prove control of
// an email address or mobile number.
package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/metrics"
	"github.com/wirebazaar/wirebazaar-backend/pkg/security"
)

const (
	codeLength         = 6
	defaultTTL         = 5 * time.Minute
	defaultMaxAttempts = 4
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Verification outcomes reported to metrics.
const (
	OutcomeVerified  = "verified"
	OutcomeNoPending = "no_pending"
	OutcomeExpired   = "expired"
	OutcomeExhausted = "exhausted"
	OutcomeMalformed = "malformed"
	OutcomeMismatch  = "mismatch"
)

// Service issues and verifies one-time codes.
type Service interface {
	RequestCode(ctx context.Context, contact string) (*Challenge, error)
	VerifyCode(ctx context.Context, contact, code string) (Contact, error)
}

// Challenge describes an issued code without revealing it.
type Challenge struct {
	Contact   string    `json:"contact"`
	Channel   Channel   `json:"channel"`
	ExpiresAt time.Time `json:"expires_at"`
}

type pendingRecord struct {
	Contact   string    `json:"contact"`
	OTPHash   string    `json:"otp_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

type verificationKeyer interface {
	VerificationKey(contactDigest string) string
}

// ServiceParams groups the verification dependencies.
type ServiceParams struct {
	Store       kvstore.Store
	Keys        verificationKeyer
	Sender      Sender
	TTL         time.Duration
	MaxAttempts int
	Metrics     *metrics.StorefrontMetrics
	Logger      *logger.Logger
}

type service struct {
	store       kvstore.Store
	keys        verificationKeyer
	sender      Sender
	ttl         time.Duration
	maxAttempts int
	metrics     *metrics.StorefrontMetrics
	logg        *logger.Logger
	now         func() time.Time
	generate    func() (string, error)
	mu          sync.Mutex
}

// NewService constructs the verification service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("verification store required")
	}
	if params.Keys == nil {
		return nil, fmt.Errorf("verification keyer required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("code sender required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:       params.Store,
		keys:        params.Keys,
		sender:      params.Sender,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		metrics:     params.Metrics,
		logg:        logg,
		now:         time.Now,
		generate:    func() (string, error) { return security.GenerateDigits(codeLength) },
	}, nil
}

func (s *service) key(contact Contact) string {
	return s.keys.VerificationKey(security.SHA256Hex(contact.Value))
}

// retention keeps expired records around long enough to report expiry rather
// than a missing request.
func (s *service) retention() time.Duration {
	return 2 * s.ttl
}

// RequestCode issues a fresh code for contact, replacing any pending one, and
// delivers it. A failed delivery leaves no pending record behind.
func (s *service) RequestCode(ctx context.Context, raw string) (*Challenge, error) {
	contact, err := ParseContact(raw)
	if err != nil {
		return nil, err
	}
	code, err := s.generate()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}
	record := pendingRecord{
		Contact:   contact.Value,
		OTPHash:   security.BindCode(contact.Value, code),
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(contact)
	if err := kvstore.WriteJSON(ctx, s.store, key, record, s.retention()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification")
	}
	if err := s.sender.SendCode(ctx, contact, code, s.ttl); err != nil {
		if delErr := s.store.Del(ctx, key); delErr != nil {
			s.logg.Error(ctx, "otp.cleanup_failed", delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not deliver the verification code")
	}

	s.metrics.IncOTPRequest(string(contact.Channel))
	s.logg.Info(s.logg.WithField(ctx, "channel", string(contact.Channel)), "otp.requested")
	return &Challenge{Contact: contact.Value, Channel: contact.Channel, ExpiresAt: record.ExpiresAt}, nil
}

// VerifyCode checks code against the pending record for contact. Checks run in
// order: missing record, expiry, exhausted attempts, malformed code, mismatch.
// Only a mismatch consumes an attempt; expiry and exhaustion discard the record.
func (s *service) VerifyCode(ctx context.Context, raw, code string) (Contact, error) {
	contact, err := ParseContact(raw)
	if err != nil {
		return Contact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(contact)
	var record pendingRecord
	found, err := kvstore.ReadJSON(ctx, s.store, key, &record)
	if err != nil {
		if !errors.Is(err, kvstore.ErrCorrupt) {
			return Contact{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification")
		}
		found = false
	}
	if !found || record.Contact != contact.Value {
		return Contact{}, s.reject(ctx, OutcomeNoPending, pkgerrors.CodeValidation, "Please request a new OTP for this contact.")
	}

	if s.now().After(record.ExpiresAt) {
		s.discard(ctx, key)
		return Contact{}, s.reject(ctx, OutcomeExpired, pkgerrors.CodeUnauthorized, "OTP has expired. Please request a new code.")
	}
	if record.Attempts >= s.maxAttempts {
		s.discard(ctx, key)
		return Contact{}, s.reject(ctx, OutcomeExhausted, pkgerrors.CodeUnauthorized, "Too many incorrect attempts. Please request a new OTP.")
	}

	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return Contact{}, s.reject(ctx, OutcomeMalformed, pkgerrors.CodeValidation, "Enter the 6-digit OTP sent to you.")
	}

	candidate := security.BindCode(contact.Value, code)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(record.OTPHash)) != 1 {
		record.Attempts++
		if err := kvstore.WriteJSON(ctx, s.store, key, record, s.retention()); err != nil {
			return Contact{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification")
		}
		return Contact{}, s.reject(ctx, OutcomeMismatch, pkgerrors.CodeValidation, "Incorrect OTP. Please try again.")
	}

	s.discard(ctx, key)
	s.metrics.IncOTPVerification(OutcomeVerified)
	s.logg.Info(s.logg.WithField(ctx, "channel", string(contact.Channel)), "otp.verified")
	return contact, nil
}

func (s *service) reject(ctx context.Context, outcome string, code pkgerrors.Code, message string) error {
	s.metrics.IncOTPVerification(outcome)
	s.logg.Debug(s.logg.WithField(ctx, "outcome", outcome), "otp.rejected")
	return pkgerrors.New(code, message)
}

func (s *service) discard(ctx context.Context, key string) {
	if err := s.store.Del(ctx, key); err != nil {
		s.logg.Error(ctx, "otp.discard_failed", err)
	}
}
