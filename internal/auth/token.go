// Package auth provides JWT session token handling and auth middleware
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity embedded in a session token
type Claims struct {
	UserID int
	Email  string
	Role   string
}

// TokenManager handles JWT token generation and validation
type TokenManager struct {
	secret string
	expiry time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		expiry: expiry,
	}
}

// Generate creates a signed session token embedding user id, email and role
func (tm *TokenManager) Generate(userID int, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(tm.expiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate checks signature and expiry of a session token and returns the embedded identity
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	// JWT claims decode numbers as float64
	userID, ok := mapClaims["user_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("user_id not found in token")
	}

	email, ok := mapClaims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("email not found in token")
	}

	role, ok := mapClaims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("role not found in token")
	}

	return &Claims{
		UserID: int(userID),
		Email:  email,
		Role:   role,
	}, nil
}
