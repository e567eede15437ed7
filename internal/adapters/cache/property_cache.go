package cache_adapter

import (
	"kama-bff/internal/core/domain"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// PropertyCache - локальный LRU-кэш страниц поиска и списков подходящих объектов.
type PropertyCache struct {
	pages *ccache.Cache[*domain.PropertyPage]
	lists *ccache.Cache[[]domain.Property]
}

func NewPropertyCache(maxSize int64) *PropertyCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &PropertyCache{
		pages: ccache.New(ccache.Configure[*domain.PropertyPage]().MaxSize(maxSize)),
		lists: ccache.New(ccache.Configure[[]domain.Property]().MaxSize(maxSize)),
	}
}

func (c *PropertyCache) GetPage(key string) (*domain.PropertyPage, bool) {
	item := c.pages.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

func (c *PropertyCache) SetPage(key string, page *domain.PropertyPage, ttl time.Duration) {
	c.pages.Set(key, page, ttl)
}

func (c *PropertyCache) GetList(key string) ([]domain.Property, bool) {
	item := c.lists.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

func (c *PropertyCache) SetList(key string, properties []domain.Property, ttl time.Duration) {
	c.lists.Set(key, properties, ttl)
}

func (c *PropertyCache) Delete(key string) {
	c.pages.Delete(key)
	c.lists.Delete(key)
}

// Stop останавливает фоновые горутины ccache.
func (c *PropertyCache) Stop() {
	c.pages.Stop()
	c.lists.Stop()
}
