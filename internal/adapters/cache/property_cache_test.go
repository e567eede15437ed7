package cache_adapter

import (
	"testing"
	"time"

	"kama-bff/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestPropertyCache(t *testing.T) {
	c := NewPropertyCache(10)
	defer c.Stop()

	_, ok := c.GetPage("k")
	assert.False(t, ok)

	c.SetPage("k", &domain.PropertyPage{Pagination: domain.Pagination{Total: 3}}, time.Minute)
	page, ok := c.GetPage("k")
	assert.True(t, ok)
	assert.Equal(t, 3, page.Pagination.Total)

	c.SetList("matching:u1", []domain.Property{{ID: "p1"}}, time.Minute)
	c.Delete("matching:u1")
	_, ok = c.GetList("matching:u1")
	assert.False(t, ok)
}

func TestPropertyCache_Expired(t *testing.T) {
	c := NewPropertyCache(10)
	defer c.Stop()

	c.SetList("matching:u1", []domain.Property{{ID: "p1"}}, -time.Second)
	_, ok := c.GetList("matching:u1")
	assert.False(t, ok)
}
