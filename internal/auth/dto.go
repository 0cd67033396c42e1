package auth

import (
	"time"

	"github.com/wirebazaar/wirebazaar-backend/pkg/auth/session"
)

// OTPRequest asks for a one-time code for a contact.
type OTPRequest struct {
	Contact string `json:"contact" validate:"required"`
}

// LoginRequest exchanges a one-time code for a session.
type LoginRequest struct {
	Contact string `json:"contact" validate:"required"`
	OTP     string `json:"otp" validate:"required"`
}

// OwnerLoginRequest captures the back-office credentials.
type OwnerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the access token and the signed-in profile.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        session.Profile `json:"user"`
}

// OwnerLoginResponse mirrors LoginResponse for the shop owner.
type OwnerLoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Email       string    `json:"email"`
}
