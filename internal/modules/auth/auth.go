package auth

import (
	"context"

	"github.com/dgrijalva/jwt-go"
	"github.com/georgemunganga/vendor-portal/internal/modules/user"
)

// Service defines the interface for admin authentication.
type Service interface {
	// Login checks credentials and returns a signed session token.
	Login(ctx context.Context, email, password string) (string, error)
	// ParseToken validates a session token and returns its claims.
	ParseToken(token string) (*Claims, error)
}

// Claims are the session token claims. Subject is the admin user id.
type Claims struct {
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
	jwt.StandardClaims
}
