package rest

import (
	"fmt"
	"kama-bff/internal/adapters/eventbus"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/core/port"
	"net/http"
	"time"
)

// EventsHandler - SSE-поток событий обновления для вкладок пользователя.
type EventsHandler struct {
	hub       *eventbus.SSEHub
	keepAlive time.Duration
	loginURL  string
}

func NewEventsHandler(hub *eventbus.SSEHub, keepAlive time.Duration, loginURL string) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &EventsHandler{hub: hub, keepAlive: keepAlive, loginURL: loginURL}
}

// Subscribe обрабатывает GET /api/v1/events/subscribe
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubscribeToEvents"})

	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("Response writer does not support streaming", nil, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	logger.Info("New client subscribing to SSE events", nil)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	clientChan := h.hub.AddClient(userID)
	defer h.hub.RemoveClient(userID, clientChan)

	// подтверждаем установку соединения
	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case data := <-clientChan:
			if _, err := w.Write(data); err != nil {
				logger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flusher.Flush()
			logger.Debug("Sent SSE event to client", nil)

		case <-ticker.C:
			// строки с двоеточием в начале - комментарии SSE, браузер их игнорирует
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			logger.Info("SSE client disconnected", nil)
			return
		}
	}
}
