package usecases_port

import (
	"context"
	"kama-bff/internal/core/domain"
)

type FavoriteStateSyncPort interface {
	Load(ctx context.Context, userID string) domain.FavoritesSnapshot
	Toggle(ctx context.Context, userID, propertyID string) (domain.FavoritesSnapshot, error)
}
