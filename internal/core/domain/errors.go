package domain

import "errors"

var (
	ErrInvalidUserID       = errors.New("invalid or missing user id")
	ErrInvalidAlertID      = errors.New("invalid or missing alert id")
	ErrInvalidPropertyID   = errors.New("invalid or missing property id")
	ErrAlertNotFound       = errors.New("alert not found")
	ErrUpstreamUnavailable = errors.New("upstream api unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	// ErrTokenInvalid - токен отсутствует, подделан или истёк.
	ErrTokenInvalid = errors.New("token is invalid")
)
