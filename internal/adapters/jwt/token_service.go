package token_adapter

import (
	"context"
	"errors"
	"fmt"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService проверяет HS256-токены бэкенда Kama общим секретом.
type TokenService struct {
	signingKey []byte
}

func NewTokenService(signingKey string) (*TokenService, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenService{signingKey: []byte(signingKey)}, nil
}

// kamaClaims: бэкенд кладёт id пользователя в "id", старые токены - в "user_id",
// сторонние - только в "sub".
type kamaClaims struct {
	AccountID string `json:"id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *kamaClaims) userID() string {
	switch {
	case c.AccountID != "":
		return c.AccountID
	case c.UserID != "":
		return c.UserID
	default:
		return c.Subject
	}
}

// GenerateToken подписывает токен. Используется для локальной разработки и тестов.
func (s *TokenService) GenerateToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &kamaClaims{
		AccountID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	serviceLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TokenService",
		"method":    "ValidateToken",
	})

	if tokenString == "" {
		return nil, domain.ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &kamaClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			serviceLogger.Warn("Token has expired", nil)
		} else {
			serviceLogger.Warn("Invalid token format or signature", port.Fields{"error": err.Error()})
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*kamaClaims)
	if !ok || !token.Valid || claims.userID() == "" {
		serviceLogger.Warn("Token has no user id", nil)
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Claims{UserID: claims.userID(), Email: claims.Email, Role: claims.Role}, nil
}
