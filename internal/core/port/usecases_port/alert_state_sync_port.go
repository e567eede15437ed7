package usecases_port

import (
	"context"
	"kama-bff/internal/core/domain"
)

// AlertStateSyncPort - загрузка, создание, удаление и переключение алертов пользователя.
type AlertStateSyncPort interface {
	Load(ctx context.Context, userID string) domain.AlertsSnapshot
	Create(ctx context.Context, userID string, criteria domain.AlertCriteria) (*domain.Alert, error)
	Delete(ctx context.Context, userID, alertID string) error
	Toggle(ctx context.Context, userID, alertID string) (*domain.Alert, error)
}
