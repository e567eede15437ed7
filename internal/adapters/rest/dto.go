package rest

import "kama-bff/internal/core/domain"

type ErrorResponse struct {
	Error    string `json:"error"`
	LoginURL string `json:"login_url,omitempty"`
	Details  string `json:"details,omitempty"`
}

// AlertResponse - ответ на создание или переключение алерта.
type AlertResponse struct {
	Alert domain.Alert `json:"alert"`
}

type MatchingPropertiesResponse struct {
	Properties []domain.Property `json:"properties"`
	Count      int               `json:"count"`
}

// FavoriteToggleResponse - снимок избранного после переключения.
type FavoriteToggleResponse struct {
	domain.FavoritesSnapshot
	PropertyID string `json:"propertyId"`
	IsFavorite bool   `json:"isFavorite"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
