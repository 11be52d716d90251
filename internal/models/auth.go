package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// LoginRequest holds administrator credentials.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// AdminInfo describes the authenticated administrator.
type AdminInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// JWTClaims is the access token payload. The subject carries the username.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// Username returns the token subject.
func (c *JWTClaims) Username() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
