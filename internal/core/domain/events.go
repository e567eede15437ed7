package domain

import "time"

// RefreshReason - почему зависимым представлениям нужно перезапросить подходящие объекты.
type RefreshReason string

const (
	RefreshAlertCreated RefreshReason = "alert_created"
	RefreshAlertDeleted RefreshReason = "alert_deleted"
	RefreshAlertToggled RefreshReason = "alert_toggled"
)

// RefreshMatchingPropertiesEvent - сигнал "обнови подходящие объекты" для одного пользователя.
type RefreshMatchingPropertiesEvent struct {
	UserID     string        `json:"user_id"`
	Reason     RefreshReason `json:"reason"`
	AlertID    string        `json:"alert_id,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
	// Origin - id экземпляра сервиса, который опубликовал событие.
	Origin string `json:"origin,omitempty"`
}
