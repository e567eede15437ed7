package port

import (
	"context"
	"kama-bff/internal/core/domain"
)

// RefreshListener получает события обновления подходящих объектов.
type RefreshListener func(ctx context.Context, event domain.RefreshMatchingPropertiesEvent)

// RefreshPublisherPort - контракт для рассылки сигнала refreshMatchingProperties.
type RefreshPublisherPort interface {
	PublishRefresh(ctx context.Context, event domain.RefreshMatchingPropertiesEvent) error
}

// RefreshBusPort - публикация плюс подписка. Unsubscribe можно вызывать несколько раз.
type RefreshBusPort interface {
	RefreshPublisherPort
	Subscribe(listener RefreshListener) (unsubscribe func())
}
