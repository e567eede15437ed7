package usecases_port

import (
	"context"
	"kama-bff/internal/core/domain"
)

type SearchPropertiesUseCasePort interface {
	Execute(ctx context.Context, req domain.SearchRequest) (*domain.PropertyPage, error)
}
