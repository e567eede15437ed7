package port

import (
	"context"
	"kama-bff/internal/core/domain"
)

// TokenValidatorPort проверяет bearer-токен, выданный бэкендом Kama.
type TokenValidatorPort interface {
	ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error)
}
