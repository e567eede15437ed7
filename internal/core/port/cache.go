package port

import (
	"kama-bff/internal/core/domain"
	"time"
)

// PropertyCachePort - кэш результатов запросов к объявлениям.
type PropertyCachePort interface {
	GetPage(key string) (*domain.PropertyPage, bool)
	SetPage(key string, page *domain.PropertyPage, ttl time.Duration)
	GetList(key string) ([]domain.Property, bool)
	SetList(key string, properties []domain.Property, ttl time.Duration)
	Delete(key string)
}
