package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator mints and verifies bearer tokens for a user identity.
type TokenGenerator interface {
	GenerateToken(userID int64, email string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims carries the user's email next to the registered claims. The subject
// is the user's internal id in decimal.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidTTL   = errors.New("token ttl must be positive")
)
