package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"sync"
)

// RefreshEventName - имя SSE-события, которое получает браузер.
const RefreshEventName = "refreshMatchingProperties"

// ClientChannel - канал одного SSE-соединения (одна вкладка браузера).
type ClientChannel chan []byte

// SSEHub раздаёт события шины открытым SSE-соединениям пользователя.
type SSEHub struct {
	// ключ - ID пользователя, у одного пользователя может быть несколько вкладок
	clients    map[string][]ClientChannel
	mu         sync.RWMutex
	bufferSize int

	logger port.LoggerPort
}

func NewSSEHub(bufferSize int, baseLogger port.LoggerPort) *SSEHub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &SSEHub{
		clients:    make(map[string][]ClientChannel),
		bufferSize: bufferSize,
		logger:     baseLogger.WithFields(port.Fields{"component": "SSEHub"}),
	}
}

// OnRefresh - слушатель шины.
func (h *SSEHub) OnRefresh(ctx context.Context, event domain.RefreshMatchingPropertiesEvent) {
	eventLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SSEHub",
		"user_id":   event.UserID,
	})

	payload, err := json.Marshal(event)
	if err != nil {
		eventLogger.Error("Failed to marshal event", err, nil)
		return
	}
	message := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", RefreshEventName, payload))

	h.mu.RLock()
	defer h.mu.RUnlock()

	channels := h.clients[event.UserID]
	if len(channels) == 0 {
		eventLogger.Debug("No active clients for user, event dropped", nil)
		return
	}
	for _, ch := range channels {
		// переполненный клиент пропускает событие, остальные его получают
		select {
		case ch <- message:
		default:
			eventLogger.Warn("Client channel is full, skipping", nil)
		}
	}
}

func (h *SSEHub) AddClient(userID string) ClientChannel {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(ClientChannel, h.bufferSize)
	h.clients[userID] = append(h.clients[userID], ch)

	h.logger.Info("Client connected", port.Fields{
		"user_id":           userID,
		"connections_count": len(h.clients[userID]),
	})
	return ch
}

func (h *SSEHub) RemoveClient(userID string, ch ClientChannel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channels := h.clients[userID]
	kept := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		delete(h.clients, userID)
		h.logger.Debug("Last client disconnected, user removed", port.Fields{"user_id": userID})
		return
	}
	h.clients[userID] = kept
	h.logger.Info("Client disconnected", port.Fields{
		"user_id":               userID,
		"remaining_connections": len(kept),
	})
}

// ClientsCount - число открытых соединений пользователя.
func (h *SSEHub) ClientsCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
