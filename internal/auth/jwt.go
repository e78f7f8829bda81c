package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gosuda/plano/internal/domain"
)

// Claims holds the JWT token payload. Logins are handled by the identity
// provider in front of plano; the claims only carry who is acting.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
}

const (
	tokenTypeAccess = "access"
	issuer          = "plano"
)

// ErrInvalidToken is returned when a JWT cannot be parsed or has expired.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// IssueAccessToken creates a signed JWT access token.
func IssueAccessToken(secret string, userID uuid.UUID, name, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
		UserID:    userID.String(),
		Name:      name,
		Role:      role,
		TokenType: tokenTypeAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.IssueAccessToken: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates an access token string. Returns the embedded claims.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	if !token.Valid || claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	return claims, nil
}

// Actor returns the acting user described by the claims.
func (c *Claims) Actor() (domain.Actor, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("auth.Claims.Actor: %w", ErrInvalidToken)
	}
	return domain.Actor{ID: id, Name: c.Name}, nil
}
