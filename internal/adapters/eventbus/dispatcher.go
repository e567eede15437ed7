package eventbus

import (
	"context"
	"errors"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"sync"
)

// ErrBusFull - буфер диспетчера заполнен, событие не принято.
var ErrBusFull = errors.New("refresh bus buffer is full")

// ErrBusClosed - диспетчер остановлен.
var ErrBusClosed = errors.New("refresh bus is closed")

type eventWithContext struct {
	ctx   context.Context
	event domain.RefreshMatchingPropertiesEvent
}

// Dispatcher - внутрипроцессная шина событий refreshMatchingProperties.
// События доставляются слушателям по одному, в порядке публикации, из одной горутины.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[uint64]port.RefreshListener
	nextID    uint64

	eventChan chan eventWithContext
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	logger port.LoggerPort
}

func NewDispatcher(bufferSize int, baseLogger port.LoggerPort) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	d := &Dispatcher{
		listeners: make(map[uint64]port.RefreshListener),
		eventChan: make(chan eventWithContext, bufferSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "RefreshDispatcher"}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.stopped)
	d.logger.Debug("Dispatcher started", nil)

	for {
		select {
		case <-d.done:
			return
		case pkg := <-d.eventChan:
			d.deliver(pkg)
		}
	}
}

func (d *Dispatcher) deliver(pkg eventWithContext) {
	eventLogger := contextkeys.LoggerFromContext(pkg.ctx).WithFields(port.Fields{
		"component": "RefreshDispatcher",
		"user_id":   pkg.event.UserID,
		"reason":    string(pkg.event.Reason),
	})

	d.mu.RLock()
	listeners := make([]port.RefreshListener, 0, len(d.listeners))
	for _, l := range d.listeners {
		listeners = append(listeners, l)
	}
	d.mu.RUnlock()

	eventLogger.Debug("Dispatching refresh event", port.Fields{"listeners_count": len(listeners)})
	for _, l := range listeners {
		d.safeCall(eventLogger, l, pkg)
	}
}

func (d *Dispatcher) safeCall(logger port.LoggerPort, l port.RefreshListener, pkg eventWithContext) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Refresh listener panicked", nil, port.Fields{"panic": r})
		}
	}()
	l(pkg.ctx, pkg.event)
}

// PublishRefresh ставит событие в очередь и не ждёт слушателей.
// Контекст запроса отвязывается от отмены: событие переживает ответ клиенту.
func (d *Dispatcher) PublishRefresh(ctx context.Context, event domain.RefreshMatchingPropertiesEvent) error {
	select {
	case <-d.done:
		return ErrBusClosed
	default:
	}

	pkg := eventWithContext{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case d.eventChan <- pkg:
		return nil
	default:
		d.logger.Warn("Refresh bus buffer is full, event dropped", port.Fields{"user_id": event.UserID})
		return ErrBusFull
	}
}

// Subscribe регистрирует слушателя. Возвращённую функцию можно вызывать многократно.
func (d *Dispatcher) Subscribe(listener port.RefreshListener) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = listener
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners, id)
			d.mu.Unlock()
		})
	}
}

// Close останавливает диспетчер. События, оставшиеся в буфере, не доставляются.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.done) })
	<-d.stopped
}
