package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"kama-bff/internal/constants"
	"kama-bff/internal/core/domain"
	"kama-bff/internal/core/port"
)

// localState - типизированная обёртка над KeyValueStorePort для ключей одного пользователя.
type localState struct {
	store  port.KeyValueStorePort
	userID string
}

func newLocalState(store port.KeyValueStorePort, userID string) localState {
	return localState{store: store, userID: userID}
}

func (s localState) key(name string) string {
	return constants.UserScopedKey(s.userID, name)
}

func (s localState) readJSON(ctx context.Context, name string, dst interface{}) (bool, error) {
	raw, found, err := s.store.Get(ctx, s.key(name))
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !found || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return true, nil
}

func (s localState) writeJSON(ctx context.Context, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.store.Set(ctx, s.key(name), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// ActiveFlags - карта id алерта -> active.
func (s localState) ActiveFlags(ctx context.Context) (map[string]bool, error) {
	flags := make(map[string]bool)
	if _, err := s.readJSON(ctx, constants.AlertActiveKey, &flags); err != nil {
		return make(map[string]bool), err
	}
	return flags, nil
}

func (s localState) SaveActiveFlags(ctx context.Context, flags map[string]bool) error {
	return s.writeJSON(ctx, constants.AlertActiveKey, flags)
}

func (s localState) AlertsCache(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	if _, err := s.readJSON(ctx, constants.AlertsCacheKey, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s localState) SaveAlertsCache(ctx context.Context, alerts []domain.Alert) error {
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return s.writeJSON(ctx, constants.AlertsCacheKey, alerts)
}

func (s localState) FavoritesCache(ctx context.Context) ([]string, bool, error) {
	var ids []string
	found, err := s.readJSON(ctx, constants.FavoritesCacheKey, &ids)
	if err != nil {
		return nil, false, err
	}
	return ids, found, nil
}

func (s localState) SaveFavoritesCache(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return s.writeJSON(ctx, constants.FavoritesCacheKey, ids)
}

// mergeActiveFlags применяет локальные флаги поверх серверных значений.
func mergeActiveFlags(alerts []domain.Alert, flags map[string]bool) []domain.Alert {
	merged := make([]domain.Alert, len(alerts))
	for i, alert := range alerts {
		if active, ok := flags[alert.ID]; ok {
			alert.Active = active
		}
		merged[i] = alert
	}
	return merged
}
