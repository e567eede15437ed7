package eventbus

import (
	"context"
	"fmt"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
)

// CompositePublisher публикует событие в локальную шину и, если задан, в брокер,
// чтобы его получили другие экземпляры сервиса.
type CompositePublisher struct {
	local  port.RefreshPublisherPort
	remote port.RefreshPublisherPort
	origin string
}

func NewCompositePublisher(local, remote port.RefreshPublisherPort, origin string) *CompositePublisher {
	return &CompositePublisher{local: local, remote: remote, origin: origin}
}

func (p *CompositePublisher) PublishRefresh(ctx context.Context, event domain.RefreshMatchingPropertiesEvent) error {
	if event.Origin == "" {
		event.Origin = p.origin
	}

	if err := p.local.PublishRefresh(ctx, event); err != nil {
		return fmt.Errorf("local refresh publish failed: %w", err)
	}
	if p.remote == nil {
		return nil
	}
	if err := p.remote.PublishRefresh(ctx, event); err != nil {
		return fmt.Errorf("remote refresh publish failed: %w", err)
	}
	return nil
}
