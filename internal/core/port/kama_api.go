package port

import (
	"context"
	"kama-bff/internal/core/domain"
)

// AlertsAPIPort - контракт клиента к эндпоинтам алертов бэкенда Kama.
type AlertsAPIPort interface {
	ListAlerts(ctx context.Context, userID string) ([]domain.Alert, error)
	// CreateAlert возвращает nil, если бэкенд ответил без тела или тело не разобрать.
	CreateAlert(ctx context.Context, userID string, criteria domain.AlertCriteria) (*domain.Alert, error)
	DeleteAlert(ctx context.Context, userID, alertID string) error
	ListMatchingProperties(ctx context.Context, userID string) ([]domain.Property, error)
}

// FavoritesAPIPort - контракт клиента к эндпоинтам избранного.
type FavoritesAPIPort interface {
	ListFavoriteIDs(ctx context.Context, userID string) ([]string, error)
	AddFavorite(ctx context.Context, userID, propertyID string) error
	RemoveFavorite(ctx context.Context, userID, propertyID string) error
}

// PropertiesAPIPort - контракт клиента к поиску объявлений.
type PropertiesAPIPort interface {
	FindProperties(ctx context.Context, filters domain.SearchFilters, page, limit int, sort, surface string) (*domain.PropertyPage, error)
}
