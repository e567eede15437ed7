package usecase

import (
	"context"
	"fmt"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"time"
)

// GetMatchingPropertiesUseCase отдаёт объекты, подходящие под активные алерты пользователя.
// Результат кэшируется и сбрасывается событием refreshMatchingProperties.
type GetMatchingPropertiesUseCase struct {
	api      port.AlertsAPIPort
	cache    port.PropertyCachePort
	cacheTTL time.Duration
	metrics  port.MetricsPort
}

func NewGetMatchingPropertiesUseCase(api port.AlertsAPIPort, cache port.PropertyCachePort, cacheTTL time.Duration, metrics port.MetricsPort) *GetMatchingPropertiesUseCase {
	if metrics == nil {
		metrics = port.NewNoopMetrics()
	}
	return &GetMatchingPropertiesUseCase{api: api, cache: cache, cacheTTL: cacheTTL, metrics: metrics}
}

func matchingCacheKey(userID string) string {
	return "matching:" + userID
}

func (uc *GetMatchingPropertiesUseCase) Execute(ctx context.Context, userID string) ([]domain.Property, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetMatchingProperties",
		"user_id":  userID,
	})

	if uc.cache != nil {
		if cached, ok := uc.cache.GetList(matchingCacheKey(userID)); ok {
			ucLogger.Debug("Matching cache hit", nil)
			return cached, nil
		}
	}

	properties, err := uc.api.ListMatchingProperties(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to fetch matching properties", err, nil)
		uc.metrics.UpstreamFailure("list_matching")
		return nil, fmt.Errorf("failed to get matching properties: %w", err)
	}

	if uc.cache != nil {
		uc.cache.SetList(matchingCacheKey(userID), properties, uc.cacheTTL)
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"matching_count": len(properties)})
	return properties, nil
}

// OnRefresh - слушатель шины: сбрасывает кэш подходящих объектов пользователя.
func (uc *GetMatchingPropertiesUseCase) OnRefresh(ctx context.Context, event domain.RefreshMatchingPropertiesEvent) {
	if uc.cache == nil {
		return
	}
	uc.cache.Delete(matchingCacheKey(event.UserID))
	contextkeys.LoggerFromContext(ctx).Debug("Matching cache invalidated", port.Fields{
		"user_id": event.UserID,
		"reason":  string(event.Reason),
	})
}
