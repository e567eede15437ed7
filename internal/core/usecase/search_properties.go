package usecase

import (
	"context"
	"fmt"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"kama-bff/internal/core/port/usecases_port"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPage  = 1
	defaultLimit = 12
	maxLimit     = 100
)

// SearchPropertiesUseCase: строка поиска -> фильтры -> запрос к бэкенду, с кэшем страниц.
type SearchPropertiesUseCase struct {
	interpreter usecases_port.InterpretSearchQueryUseCasePort
	api         port.PropertiesAPIPort
	cache       port.PropertyCachePort
	cacheTTL    time.Duration
	metrics     port.MetricsPort
}

func NewSearchPropertiesUseCase(
	interpreter usecases_port.InterpretSearchQueryUseCasePort,
	api port.PropertiesAPIPort,
	cache port.PropertyCachePort,
	cacheTTL time.Duration,
	metrics port.MetricsPort,
) *SearchPropertiesUseCase {
	if metrics == nil {
		metrics = port.NewNoopMetrics()
	}
	return &SearchPropertiesUseCase{
		interpreter: interpreter,
		api:         api,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
	}
}

func (uc *SearchPropertiesUseCase) Execute(ctx context.Context, req domain.SearchRequest) (*domain.PropertyPage, error) {
	page, limit := req.Page, req.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	filters := uc.interpreter.Execute(req.Query, req.Category, req.DefaultStatus)

	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SearchProperties",
		"category": string(req.Category),
		"page":     page,
		"limit":    limit,
	})
	ucLogger.Info("Use case started", port.Fields{"filters": filters})

	key := searchCacheKey(filters, page, limit, req.Sort, req.Surface)
	if uc.cache != nil {
		if cached, ok := uc.cache.GetPage(key); ok {
			ucLogger.Debug("Search cache hit", port.Fields{"cache_key": key})
			return cached, nil
		}
	}

	result, err := uc.api.FindProperties(ctx, filters, page, limit, req.Sort, req.Surface)
	if err != nil {
		ucLogger.Error("Properties API returned an error", err, nil)
		uc.metrics.UpstreamFailure("find_properties")
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	result.Filters = filters

	if uc.cache != nil {
		uc.cache.SetPage(key, result, uc.cacheTTL)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   result.Pagination.Total,
		"items_on_page": len(result.Properties),
	})
	return result, nil
}

// searchCacheKey - канонический ключ: url.Values.Encode сортирует параметры.
func searchCacheKey(f domain.SearchFilters, page, limit int, sort, surface string) string {
	v := url.Values{}
	if len(f.Type) > 0 {
		v.Set("type", strings.Join(f.Type, ","))
	}
	v.Set("availability", f.Availability)
	v.Set("city", f.City)
	v.Set("status", f.Status)
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatInt(*f.MinPrice, 10))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatInt(*f.MaxPrice, 10))
	}
	if f.Rooms != nil {
		v.Set("rooms", strconv.FormatInt(*f.Rooms, 10))
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	v.Set("sort", sort)
	v.Set("surface", surface)
	return "search:" + v.Encode()
}
