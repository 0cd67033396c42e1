package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wirebazaar/wirebazaar-backend/internal/users"
	"github.com/wirebazaar/wirebazaar-backend/internal/verification"
	pkgAuth "github.com/wirebazaar/wirebazaar-backend/pkg/auth"
	"github.com/wirebazaar/wirebazaar-backend/pkg/auth/session"
	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	// OwnerUserID is the subject of owner tokens.
	OwnerUserID = "owner"
)

// Service defines the behavior needed by the auth controllers.
type Service interface {
	RequestOTP(ctx context.Context, req OTPRequest) (*verification.Challenge, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Restore(ctx context.Context, sessionID string) (*session.Profile, error)
	Logout(ctx context.Context, sessionID string) error
	OwnerLogin(ctx context.Context, req OwnerLoginRequest) (*OwnerLoginResponse, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, contact string) (*users.Identity, error)
}

type sessionManager interface {
	Create(ctx context.Context, profile session.Profile) (string, error)
	Restore(ctx context.Context, sessionID string) (*session.Profile, error)
	Revoke(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Verifier       verification.Service
	Users          identityResolver
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	OwnerConfig    config.OwnerConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	verifier verification.Service
	users    identityResolver
	session  sessionManager
	jwtCfg   config.JWTConfig
	owner    config.OwnerConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Verifier == nil {
		return nil, fmt.Errorf("verification service is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		verifier: params.Verifier,
		users:    params.Users,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		owner:    params.OwnerConfig,
		password: params.PasswordConfig,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) RequestOTP(ctx context.Context, req OTPRequest) (*verification.Challenge, error) {
	return s.verifier.RequestCode(ctx, req.Contact)
}

// Login verifies the code, resolves the identity behind the contact and opens
// a session whose id becomes the token jti.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	contact, err := s.verifier.VerifyCode(ctx, req.Contact, req.OTP)
	if err != nil {
		return nil, err
	}
	identity, err := s.users.Resolve(ctx, contact.Value)
	if err != nil {
		return nil, err
	}

	profile := session.Profile{
		ID:          identity.ID,
		Contact:     identity.Contact,
		LastLoginAt: identity.LastLoginAt,
	}
	token, expiresAt, err := s.openSession(ctx, profile, enums.ActorRoleCustomer)
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, identity.ID), "auth.login")
	return &LoginResponse{AccessToken: token, ExpiresAt: expiresAt, User: profile}, nil
}

// Restore re-establishes the profile of an open session.
func (s *service) Restore(ctx context.Context, sessionID string) (*session.Profile, error) {
	profile, err := s.session.Restore(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore session")
	}
	return profile, nil
}

// Logout ends the session. Tokens that reference it stop working.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.session.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) OwnerLogin(ctx context.Context, req OwnerLoginRequest) (*OwnerLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || s.owner.PasswordHash == "" || email != strings.ToLower(strings.TrimSpace(s.owner.Email)) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	valid, err := security.VerifyPassword(req.Password, s.owner.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if stale, _ := security.NeedsRehash(s.owner.PasswordHash, s.password); stale {
		s.logg.Warn(ctx, "auth.owner_hash_outdated: regenerate with cmd/owner-hash")
	}

	profile := session.Profile{ID: OwnerUserID, Contact: email, LastLoginAt: s.now().UTC()}
	token, expiresAt, err := s.openSession(ctx, profile, enums.ActorRoleOwner)
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithActorRole(ctx, string(enums.ActorRoleOwner)), "auth.owner_login")
	return &OwnerLoginResponse{AccessToken: token, ExpiresAt: expiresAt, Email: email}, nil
}

func (s *service) openSession(ctx context.Context, profile session.Profile, role enums.ActorRole) (string, time.Time, error) {
	sessionID, err := s.session.Create(ctx, profile)
	if err != nil {
		return "", time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	now := s.now().UTC()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  profile.ID,
		Contact: profile.Contact,
		Role:    role,
		JTI:     sessionID,
	})
	if err != nil {
		return "", time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, now.Add(s.jwtCfg.Expiration()), nil
}
