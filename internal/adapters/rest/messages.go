package rest

import (
	"errors"
	"kama-bff/internal/core/domain"
	"net/http"
)

// errorStatus сопоставляет доменную ошибку HTTP-статусу и сообщению для пользователя.
// fallback - сообщение операции для ошибок бэкенда.
func errorStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidAlertID),
		errors.Is(err, domain.ErrInvalidPropertyID):
		return http.StatusBadRequest, domain.MsgInvalidRequest
	case errors.Is(err, domain.ErrAlertNotFound):
		return http.StatusNotFound, domain.MsgAlertNotFound
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, domain.MsgLoginRequired
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, fallback
	default:
		return http.StatusInternalServerError, fallback
	}
}

// respondWithError пишет ответ об ошибке. Для 401 добавляет ссылку на вход.
func respondWithError(w http.ResponseWriter, err error, fallback, loginURL string) {
	status, msg := errorStatus(err, fallback)
	resp := ErrorResponse{Error: msg}
	if status == http.StatusUnauthorized {
		resp.LoginURL = loginURL
	}
	RespondWithJSON(w, status, resp)
}
