package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  string
	Contact string
	Role    enums.ActorRole
	// JTI doubles as the session id for customer tokens. Generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  string          `json:"user_id"`
	Contact string          `json:"contact"`
	Role    enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
