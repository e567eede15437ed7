package rest

import (
	"encoding/json"
	"io"
	"kama-bff/internal/contextkeys"
	"kama-bff/internal/contracts"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
	"kama-bff/internal/core/port/usecases_port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxAlertBodyBytes = 64 << 10

// AlertsHandler - алерты пользователя и подходящие под них объекты.
type AlertsHandler struct {
	alertsUC   usecases_port.AlertStateSyncPort
	matchingUC usecases_port.GetMatchingPropertiesUseCasePort
	loginURL   string
}

func NewAlertsHandler(
	alertsUC usecases_port.AlertStateSyncPort,
	matchingUC usecases_port.GetMatchingPropertiesUseCasePort,
	loginURL string,
) *AlertsHandler {
	return &AlertsHandler{
		alertsUC:   alertsUC,
		matchingUC: matchingUC,
		loginURL:   loginURL,
	}
}

// GetAlerts обрабатывает GET /api/v1/alerts.
// Ошибка сервера не меняет статус: снимок содержит текст ошибки и кэш.
func (h *AlertsHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}

	snapshot := h.alertsUC.Load(r.Context(), userID)
	RespondWithJSON(w, http.StatusOK, snapshot)
}

// CreateAlert обрабатывает POST /api/v1/alerts
func (h *AlertsHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateAlert"})

	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxAlertBodyBytes))
	if err != nil {
		logger.Warn("Failed to read request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, domain.MsgInvalidRequest)
		return
	}

	if err := contracts.Validate(contracts.AlertCriteriaV1, body); err != nil {
		logger.Warn("Alert criteria failed schema validation", port.Fields{"error": err.Error()})
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   domain.MsgInvalidRequest,
			Details: err.Error(),
		})
		return
	}

	var criteria domain.AlertCriteria
	if err := json.Unmarshal(body, &criteria); err != nil {
		logger.Warn("Failed to decode alert criteria", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, domain.MsgInvalidRequest)
		return
	}

	alert, err := h.alertsUC.Create(r.Context(), userID, criteria)
	if err != nil {
		logger.Error("CreateAlert use case failed", err, nil)
		respondWithError(w, err, domain.MsgAlertCreateFailed, h.loginURL)
		return
	}

	RespondWithJSON(w, http.StatusCreated, AlertResponse{Alert: *alert})
}

// DeleteAlert обрабатывает DELETE /api/v1/alerts/{alertID}
func (h *AlertsHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteAlert"})

	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}
	alertID := chi.URLParam(r, "alertID")

	if err := h.alertsUC.Delete(r.Context(), userID, alertID); err != nil {
		logger.Error("DeleteAlert use case failed", err, port.Fields{"alert_id": alertID})
		respondWithError(w, err, domain.MsgAlertDeleteFailed, h.loginURL)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleAlert обрабатывает POST /api/v1/alerts/{alertID}/toggle.
// Флаг активности хранится только локально, сервер не вызывается.
func (h *AlertsHandler) ToggleAlert(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ToggleAlert"})

	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}
	alertID := chi.URLParam(r, "alertID")

	alert, err := h.alertsUC.Toggle(r.Context(), userID, alertID)
	if err != nil {
		logger.Warn("ToggleAlert use case failed", port.Fields{"alert_id": alertID, "error": err.Error()})
		respondWithError(w, err, domain.MsgAlertNotFound, h.loginURL)
		return
	}

	RespondWithJSON(w, http.StatusOK, AlertResponse{Alert: *alert})
}

// GetMatchingProperties обрабатывает GET /api/v1/alerts/matching
func (h *AlertsHandler) GetMatchingProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetMatchingProperties"})

	userID, ok := userIDFromContext(r)
	if !ok {
		writeLoginRequired(w, h.loginURL)
		return
	}

	properties, err := h.matchingUC.Execute(r.Context(), userID)
	if err != nil {
		logger.Error("GetMatchingProperties use case failed", err, nil)
		respondWithError(w, err, domain.MsgMatchingFailed, h.loginURL)
		return
	}
	if properties == nil {
		properties = []domain.Property{}
	}

	RespondWithJSON(w, http.StatusOK, MatchingPropertiesResponse{
		Properties: properties,
		Count:      len(properties),
	})
}
