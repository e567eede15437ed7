package usecases_port

import (
	"context"
	"kama-bff/internal/core/domain"
)

type GetMatchingPropertiesUseCasePort interface {
	Execute(ctx context.Context, userID string) ([]domain.Property, error)
}
